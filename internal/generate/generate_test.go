package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_EmbedsLiteralQuery(t *testing.T) {
	prompt := buildPrompt(`what is GST?`)

	assert.Contains(t, prompt, "Micro, Small, and Medium Enterprises")
	assert.Contains(t, prompt, `"what is GST?"`)
}

func TestNew_RequiresAPIKeyAndModel(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "gemini-2.5-flash"})
	require.Error(t, err)

	_, err = New(context.Background(), Config{APIKey: "key"})
	require.Error(t, err)
}

func TestNew_AppliesDefaults(t *testing.T) {
	g, err := New(context.Background(), Config{
		APIKey: "test-key",
		Model:  "gemini-2.5-flash",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, g.timeout)
	assert.NotNil(t, g.limiter)
	assert.NotNil(t, g.logger)
}
