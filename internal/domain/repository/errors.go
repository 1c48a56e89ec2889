package repository

import "errors"

var (
	// ErrSlotNotFound is returned when no slot exists for a minute.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrBucketNotFound is returned when the archive bucket does not exist.
	ErrBucketNotFound = errors.New("archive bucket not found")

	// ErrObjectNotFound is returned when an archived object does not exist.
	ErrObjectNotFound = errors.New("archived object not found")
)
