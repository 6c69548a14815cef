package domain

import "time"

// AuditStatus marks an audit entry as recording a success or a failure.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

// Security-relevant audit actions emitted by the services.
const (
	AuditActionLogin          = "login"
	AuditActionLoginFailed    = "login_failed"
	AuditActionRegister       = "register"
	AuditActionPasswordChange = "password_change"
	AuditActionAccountLocked  = "account_locked"
	AuditActionAccountUnlock  = "account_unlock"
	AuditActionUserDelete     = "user_delete"
	AuditActionSessionRevoke  = "session_revoke"
	AuditActionBulkImport     = "bulk_import"
	AuditActionBulkUpdate     = "bulk_update"
)

// AuditMaxEntries caps the retained trail; the oldest entries are evicted
// first once the cap is exceeded.
const AuditMaxEntries = 10000

// AuditEntry is one append-only audit record. Ids increase monotonically and
// are never reused, even after FIFO eviction.
type AuditEntry struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Status     AuditStatus    `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// AuditFilter narrows an audit query. Zero values mean "no constraint".
type AuditFilter struct {
	UserID     int64
	Action     string
	Resource   string
	ResourceID string
	Status     AuditStatus
	Start    *time.Time
	End      *time.Time
	Page     int
	Limit    int
}

// AuditPage is one page of a timestamp-descending audit query.
type AuditPage struct {
	Entries    []AuditEntry `json:"logs"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}
