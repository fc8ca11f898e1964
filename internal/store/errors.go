package store

import "errors"

// Sentinel errors. The service layer maps these to domain errors with the
// right HTTP semantics; the store never decides status codes.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrReportNotFound   = errors.New("report not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrAlreadyExists    = errors.New("resource already exists")
)
