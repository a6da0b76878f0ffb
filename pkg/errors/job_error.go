package errors

import (
	stderrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeProcessing   Code = "processing_error"
	CodeArchive      Code = "archive_error"
	CodeNotFound     Code = "not_found"
	CodeInvalidState Code = "invalid_state"
	CodeCrash        Code = "crash_error"
	CodeInternal     Code = "internal_error"
)

type JobError struct {
	Code    Code
	Message string
	Err     error
}

func (e *JobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err, or anything it wraps, is a JobError with the given code.
func HasCode(err error, code Code) bool {
	var je *JobError
	if stderrors.As(err, &je) {
		return je.Code == code
	}
	return false
}

// Describe returns the message meant for API consumers.
func Describe(err error) string {
	var je *JobError
	if stderrors.As(err, &je) {
		if je.Err != nil {
			return fmt.Sprintf("%s: %v", je.Message, je.Err)
		}
		return je.Message
	}
	return err.Error()
}

var (
	ErrValidation = func(err error) *JobError {
		return &JobError{Code: CodeValidation, Message: "Invalid request", Err: err}
	}
	ErrProcessing = func(err error) *JobError {
		return &JobError{Code: CodeProcessing, Message: "Failed to process image", Err: err}
	}
	ErrArchive = func(err error) *JobError {
		return &JobError{Code: CodeArchive, Message: "Failed to create download archive", Err: err}
	}
	ErrNotFound = func(err error) *JobError {
		return &JobError{Code: CodeNotFound, Message: "Job not found", Err: err}
	}
	ErrInvalidState = func(err error) *JobError {
		return &JobError{Code: CodeInvalidState, Message: "Operation not allowed in current job state", Err: err}
	}
	ErrCrash = func(err error) *JobError {
		return &JobError{Code: CodeCrash, Message: "Job crashed", Err: err}
	}
	ErrInternal = func(err error) *JobError {
		return &JobError{Code: CodeInternal, Message: "Internal server error", Err: err}
	}
)
