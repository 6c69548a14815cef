// Package service implements the account, session, lockout, audit and
// organization operations on top of the store interfaces. Services are plain
// structs wired together at startup; each method takes a context and returns
// classified errors from pkg/apierr.
package service

// RequestMeta carries the caller attribution recorded in audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
