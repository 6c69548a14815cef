package domain

import "time"

// MemberRole is a user's role within one organization, independent of the
// account-level Role.
type MemberRole string

const (
	MemberOwner  MemberRole = "owner"
	MemberAdmin  MemberRole = "admin"
	MemberMember MemberRole = "member"
)

func (r MemberRole) Valid() bool {
	return r == MemberOwner || r == MemberAdmin || r == MemberMember
}

// Member is one user's membership in an organization.
type Member struct {
	UserID   int64      `json:"userId"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// Organization groups users. The creator becomes the owner member.
type Organization struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Settings    map[string]string `json:"settings"`
	Members     []Member          `json:"members"`
	CreatedBy   int64             `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
