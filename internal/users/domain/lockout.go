package domain

import "time"

// LoginAttempt records one failed login within the attempt window.
type LoginAttempt struct {
	Timestamp  time.Time `json:"timestamp"`
	SourceAddr string    `json:"sourceAddr,omitempty"`
}

// LockoutRecord tracks failed attempts and any active lock for one user.
// Invariant: LockedUntil is either nil or in the future whenever the account
// is reported locked; attempts older than the window are pruned lazily.
type LockoutRecord struct {
	UserID         int64
	FailedAttempts []LoginAttempt
	LockedUntil    *time.Time
}

// LockoutStatus is the tracker's answer for a single user.
type LockoutStatus struct {
	IsLocked          bool       `json:"isLocked"`
	AttemptsRemaining int        `json:"attemptsRemaining"`
	LockedUntil       *time.Time `json:"lockedUntil,omitempty"`
}

// LockedAccount is one row of the admin locked-accounts listing.
type LockedAccount struct {
	UserID         int64     `json:"userId"`
	LockedUntil    time.Time `json:"lockedUntil"`
	FailedAttempts int       `json:"failedAttempts"`
}

// LockoutPolicy is the published lockout configuration.
type LockoutPolicy struct {
	MaxAttempts            int `json:"maxAttempts"`
	LockoutDurationMinutes int `json:"lockoutDurationMinutes"`
	AttemptWindowMinutes   int `json:"attemptWindowMinutes"`
}
