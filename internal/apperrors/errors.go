package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller lacks the privilege required for the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrConflict indicates a concurrent update conflict; the operation may be retried.
var ErrConflict = errors.New("concurrent update conflict")
