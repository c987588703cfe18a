package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrInvalidPlan is returned when a slice plan can't be computed from the inputs.
	ErrInvalidPlan = errors.New("invalid slice plan")
	// ErrInvalidConfig is returned when the copy engine configuration is not valid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSourceUnreadable is returned when the source file can't be opened or inspected.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrDestUnwritable is returned when the destination file can't be created or sized.
	ErrDestUnwritable = errors.New("destination unwritable")
	// ErrShortRead is returned when the source yields fewer bytes than its slice demands.
	ErrShortRead = errors.New("short read")
	// ErrIOFailure is returned when a read or write fails in the middle of a slice.
	ErrIOFailure = errors.New("io failure")
)
