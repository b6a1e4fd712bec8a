// Package team is the static credential roster the assistant attributes
// turns to. It is a deliberate stub: real authentication lives outside
// this system, and the core only needs an id, a name and a role.
package team

import "errors"

var (
	// ErrUnknownMember indicates no roster entry matches the name.
	ErrUnknownMember = errors.New("unknown team member")

	// ErrBadCredential indicates the password does not match.
	ErrBadCredential = errors.New("bad credential")
)

// Roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// Member is one roster entry. Guests carry an empty password.
type Member struct {
	ID       string
	Name     string
	Role     string
	Password string
}

// Roster is a fixed list of members.
type Roster []Member

// DefaultRoster returns the built-in roster. Guest access needs no
// password.
func DefaultRoster() Roster {
	return Roster{
		{ID: "user-admin", Name: "Admin", Role: RoleAdmin, Password: "mitra.adminlogin"},
		{ID: "user-aarya", Name: "Aarya", Role: RoleMember, Password: "mitra.aarya"},
		{ID: "user-aastha", Name: "Aastha", Role: RoleMember, Password: "mitra.aastha"},
		{ID: "user-dhananjay", Name: "Dhananjay", Role: RoleMember, Password: "mitra.dhananjay"},
		{ID: "user-surbhi", Name: "Surbhi", Role: RoleMember, Password: "mitra.surbhi"},
		{ID: "user-intern", Name: "Intern", Role: RoleMember, Password: "mitra.intern"},
		{ID: "user-guest", Name: "Guest", Role: RoleGuest, Password: ""},
	}
}

// Find returns the member with the given name.
func (r Roster) Find(name string) (Member, error) {
	for _, m := range r {
		if m.Name == name {
			return m, nil
		}
	}
	return Member{}, ErrUnknownMember
}

// Authenticate checks name and password against the roster. Guests
// authenticate with an empty password.
func (r Roster) Authenticate(name, password string) (Member, error) {
	m, err := r.Find(name)
	if err != nil {
		return Member{}, err
	}
	if m.Password != password {
		return Member{}, ErrBadCredential
	}
	return m, nil
}

// Guest returns the guest member, the fallback identity for unattributed
// turns.
func (r Roster) Guest() Member {
	for _, m := range r {
		if m.Role == RoleGuest {
			return m
		}
	}
	return Member{ID: "user-guest", Name: "Guest", Role: RoleGuest}
}
