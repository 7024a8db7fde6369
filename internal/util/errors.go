package util

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrValidation        = errors.New("validation failed")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrVersionConflict   = errors.New("resource was modified by another request")
	ErrModuleLocked      = errors.New("complete previous modules first")
	ErrOperationFailed   = errors.New("operation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("permission denied")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAlreadyOnWaitlist = errors.New("email already on the waitlist")
)
