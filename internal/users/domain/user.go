package domain

import "time"

// Role is the coarse authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// PasswordHistorySize bounds how many prior hashes are kept for reuse checks.
const PasswordHistorySize = 5

// User is the credential record. Names are unique case-insensitively.
// PasswordHash and PasswordHistory never leave the service layer.
type User struct {
	ID                int64
	Name              string
	PasswordHash      string     // argon2id, PHC encoded
	PasswordHistory   []string   // most recent prior hashes, oldest first
	PasswordChangedAt *time.Time // nil until the first password change
	Profession        string
	Role              Role
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicUser is the caller-facing projection of a User with all secret
// fields stripped.
type PublicUser struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Profession string    `json:"profession"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public strips the credential fields for API responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Profession: u.Profession,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
