package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
)

// validSSLModes are the SSL modes accepted by the pgx driver.
var validSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// Validate validates configuration values.
// Returns sentinel errors checkable with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	if c.GenerateTimeout < 1 || c.GenerateTimeout > 600 {
		return fmt.Errorf("%w: generate_timeout_seconds must be between 1 and 600, got %d",
			ErrInvalidTimeout, c.GenerateTimeout)
	}
	if c.FeedTimeout < 1 || c.FeedTimeout > 300 {
		return fmt.Errorf("%w: feed_timeout_seconds must be between 1 and 300, got %d",
			ErrInvalidTimeout, c.FeedTimeout)
	}

	// Feed URLs are optional; an empty URL means that record type is
	// unavailable and matching for it degrades to "no matches".
	for _, sheetURL := range []string{c.FAQSheetURL, c.VideoSheetURL} {
		if sheetURL == "" {
			continue
		}
		parsed, err := url.Parse(sheetURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidSheetURL, sheetURL)
		}
	}

	if c.FAQMinScore < 0 {
		return fmt.Errorf("%w: faq_min_score cannot be negative, got %g", ErrInvalidMatchOption, c.FAQMinScore)
	}
	if c.VideoMinScore < 0 {
		return fmt.Errorf("%w: video_min_score cannot be negative, got %g", ErrInvalidMatchOption, c.VideoMinScore)
	}
	if c.FAQMaxResults < 1 || c.FAQMaxResults > 50 {
		return fmt.Errorf("%w: faq_max_results must be between 1 and 50, got %d", ErrInvalidMatchOption, c.FAQMaxResults)
	}
	if c.VideoMaxResults < 1 || c.VideoMaxResults > 50 {
		return fmt.Errorf("%w: video_max_results must be between 1 and 50, got %d", ErrInvalidMatchOption, c.VideoMaxResults)
	}

	if _, _, err := net.SplitHostPort(c.HTTPAddr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidHTTPAddr, c.HTTPAddr, err)
	}

	// PostgreSQL settings matter only when storage is enabled.
	if c.StorageEnabled {
		if c.PostgresHost == "" {
			return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
		}
		if c.PostgresDBName == "" {
			return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
		}
		if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
			return fmt.Errorf("%w: %q (valid: %v)", ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
		}
	}

	return nil
}
