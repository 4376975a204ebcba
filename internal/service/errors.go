package service

import "errors"

// Sentinel errors shared by services. Authorization denials are not
// listed here: those travel as *policy.Denial so the handler layer can
// map the reason code to a status.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrPoliticianNotFound = errors.New("politician not found")
	ErrReportNotFound     = errors.New("report not found")

	// ErrStoreUnavailable marks a collaborator I/O failure. Callers must
	// not interpret it as a permission denial.
	ErrStoreUnavailable = errors.New("store unavailable")

	// errMalformedMessage marks a queue message that cannot be decoded.
	// Workers drop these instead of requeueing so a poison message
	// cannot loop forever.
	errMalformedMessage = errors.New("malformed queue message")
)
