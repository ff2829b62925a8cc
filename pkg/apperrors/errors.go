// Package apperrors defines the error taxonomy shared by every layer.
// Callers branch on these sentinels with errors.Is; the concrete message
// carries the detail.
package apperrors

import "errors"

var (
	// ErrNotFound: the document id is absent or tombstoned.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the supplied revision no longer matches the stored one.
	ErrConflict = errors.New("revision conflict")

	// ErrValidation: a required field is missing or a business rule was
	// violated (empty cart, duplicate username, protected owner).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat: a backup snapshot could not be understood.
	ErrInvalidFormat = errors.New("invalid backup format")

	// ErrPersistence: the underlying storage failed.
	ErrPersistence = errors.New("persistence failure")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsInvalidFormat(err error) bool { return errors.Is(err, ErrInvalidFormat) }
func IsPersistence(err error) bool   { return errors.Is(err, ErrPersistence) }
