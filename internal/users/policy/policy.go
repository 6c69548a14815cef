// Package policy evaluates password composition, expiration and reuse rules.
// Everything here is pure: no storage, no clock of its own.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/opshelm/warden/pkg/cryptox"
)

// Policy is the password rule set. The zero value is not useful; use
// Default().
type Policy struct {
	MinLength           int  `json:"minLength"`
	MaxLength           int  `json:"maxLength"`
	RequireUppercase    bool `json:"requireUppercase"`
	RequireLowercase    bool `json:"requireLowercase"`
	RequireNumbers      bool `json:"requireNumbers"`
	RequireSpecialChars bool `json:"requireSpecialChars"`
	ExpirationDays      int  `json:"expirationDays"`
	PreventReuse        int  `json:"preventReuse"`
}

// Default returns the production rule set.
func Default() Policy {
	return Policy{
		MinLength:           8,
		MaxLength:           128,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
		ExpirationDays:      90,
		PreventReuse:        5,
	}
}

const specialChars = `!@#$%^&*(),.?":{}|<>`

// Validate checks a password against the composition rules and returns every
// violation, not just the first.
func (p Policy) Validate(password string) []string {
	var violations []string

	if len(password) < p.MinLength {
		violations = append(violations,
			fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}
	if len(password) > p.MaxLength {
		violations = append(violations,
			fmt.Sprintf("password must not exceed %d characters", p.MaxLength))
	}
	if p.RequireUppercase && !strings.ContainsFunc(password, isUpper) {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !strings.ContainsFunc(password, isLower) {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if p.RequireNumbers && !strings.ContainsFunc(password, isDigit) {
		violations = append(violations, "password must contain at least one number")
	}
	if p.RequireSpecialChars && !strings.ContainsAny(password, specialChars) {
		violations = append(violations, "password must contain at least one special character")
	}

	return violations
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// CheckReuse reports whether the candidate password matches any of the most
// recent PreventReuse historical hashes. Hashes are salted, so the candidate
// is verified against each hash rather than compared by equality.
func (p Policy) CheckReuse(password string, history []string) bool {
	recent := history
	if len(recent) > p.PreventReuse {
		recent = recent[len(recent)-p.PreventReuse:]
	}

	for _, hash := range recent {
		if cryptox.VerifyPassword(password, hash) == nil {
			return true
		}
	}
	return false
}

// maxAge returns the expiration span.
func (p Policy) maxAge() time.Duration {
	return time.Duration(p.ExpirationDays) * 24 * time.Hour
}

// baseDate picks the timestamp expiry counts from: the last password change,
// falling back to account creation.
func baseDate(passwordChangedAt *time.Time, createdAt time.Time) time.Time {
	if passwordChangedAt != nil {
		return *passwordChangedAt
	}
	return createdAt
}

// IsExpired reports whether the password is older than ExpirationDays.
func (p Policy) IsExpired(passwordChangedAt *time.Time, createdAt, now time.Time) bool {
	return now.Sub(baseDate(passwordChangedAt, createdAt)) > p.maxAge()
}

// ExpiresAt returns the instant at which the password expires.
func (p Policy) ExpiresAt(passwordChangedAt *time.Time, createdAt time.Time) time.Time {
	return baseDate(passwordChangedAt, createdAt).Add(p.maxAge())
}

// DaysUntilExpiration returns the whole days remaining, floored at zero.
func (p Policy) DaysUntilExpiration(passwordChangedAt *time.Time, createdAt, now time.Time) int {
	remaining := p.ExpiresAt(passwordChangedAt, createdAt).Sub(now)
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	return max(0, days)
}

// ShouldWarn reports whether the password expires within a week.
func (p Policy) ShouldWarn(passwordChangedAt *time.Time, createdAt, now time.Time) bool {
	days := p.DaysUntilExpiration(passwordChangedAt, createdAt, now)
	return days > 0 && days <= 7
}
