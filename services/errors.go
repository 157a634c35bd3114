package services

import "errors"

var (
	// ErrAlreadyExists is returned by HostingClient.CreateRepository when the name is taken
	ErrAlreadyExists = errors.New("repository already exists")
	// ErrAlreadyEnabled is returned by HostingClient.EnablePages when Pages is already on
	ErrAlreadyEnabled = errors.New("static hosting already enabled")
	// ErrVersionConflict means the version token presented on write is stale or missing
	ErrVersionConflict = errors.New("content version conflict")
	// ErrInvalidPath is returned for file names that escape the repository root
	ErrInvalidPath = errors.New("invalid repository path")
	// ErrNotificationFailed means every callback attempt was used up or a non-retryable status came back
	ErrNotificationFailed = errors.New("completion notification failed")
)
