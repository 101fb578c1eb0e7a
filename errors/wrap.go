package errors

import (
	goerrors "errors"
)

// Is reports whether any error in err's chain matches target.
// An *Error target matches on code and reason, see (*Error).Is.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// FromError converts a generic error to *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var ge *Error
	if As(err, &ge) {
		return ge
	}

	return New(UnknownCode, "%v", err)
}

// Reason returns the reason of the first *Error in err's chain, or UnknownReason.
func Reason(err error) string {
	var ge *Error
	if As(err, &ge) {
		return ge.Reason
	}
	return UnknownReason
}

// Code returns the code of the first *Error in err's chain, or UnknownCode.
func Code(err error) int {
	var ge *Error
	if As(err, &ge) {
		return ge.Code
	}
	return UnknownCode
}
