package errors

// Error classes, coarse like HTTP status codes.
const (
	CodePrecondition  = 400
	CodeUnauthorized  = 401
	CodeMalformed     = 422
	CodeRateLimited   = 429
	CodeCryptoFailure = 500
)

// Stable reasons, one per error kind.
const (
	ReasonPrecondition            = "PRECONDITION"
	ReasonPEMFormat               = "PEM_FORMAT"
	ReasonUncompressedPointFormat = "UNCOMPRESSED_POINT_FORMAT"
	ReasonPublicKeyValidation     = "PUBLIC_KEY_VALIDATION"
	ReasonKeyExtraction           = "KEY_EXTRACTION"
	ReasonCryptoOperation         = "CRYPTO_OPERATION"
	ReasonPaddingDelimiter        = "PADDING_DELIMITER"
	ReasonTokenCreation           = "TOKEN_CREATION"
	ReasonTokenVerification       = "TOKEN_VERIFICATION"
	ReasonRateLimited             = "RATE_LIMITED"
)

// Sentinels for errors.Is. Derive concrete errors with WithMessage / WithMetadata / WithCause.
var (
	ErrPrecondition            = NewWithReason(CodePrecondition, ReasonPrecondition, "precondition violated")
	ErrPEMFormat               = NewWithReason(CodeMalformed, ReasonPEMFormat, "malformed PEM text")
	ErrUncompressedPointFormat = NewWithReason(CodeMalformed, ReasonUncompressedPointFormat, "malformed uncompressed point")
	ErrPublicKeyValidation     = NewWithReason(CodeMalformed, ReasonPublicKeyValidation, "invalid EC public key")
	ErrKeyExtraction           = NewWithReason(CodeMalformed, ReasonKeyExtraction, "failed to extract key")
	ErrCryptoOperation         = NewWithReason(CodeCryptoFailure, ReasonCryptoOperation, "crypto operation failed")
	ErrPaddingDelimiter        = NewWithReason(CodeMalformed, ReasonPaddingDelimiter, "missing padding delimiter")
	ErrTokenCreation           = NewWithReason(CodeCryptoFailure, ReasonTokenCreation, "failed to create VAPID token")
	ErrTokenVerification       = NewWithReason(CodeUnauthorized, ReasonTokenVerification, "invalid VAPID token")
	ErrRateLimited             = NewWithReason(CodeRateLimited, ReasonRateLimited, "push rate limit exceeded")
)

func Precondition(format string, args ...any) *Error {
	return ErrPrecondition.WithMessage(format, args...)
}

func PEMFormat(format string, args ...any) *Error {
	return ErrPEMFormat.WithMessage(format, args...)
}

func UncompressedPointFormat(format string, args ...any) *Error {
	return ErrUncompressedPointFormat.WithMessage(format, args...)
}

func PublicKeyValidation(format string, args ...any) *Error {
	return ErrPublicKeyValidation.WithMessage(format, args...)
}

func KeyExtraction(cause error, format string, args ...any) *Error {
	return ErrKeyExtraction.WithMessage(format, args...).WithCause(cause)
}

func CryptoOperation(cause error, format string, args ...any) *Error {
	return ErrCryptoOperation.WithMessage(format, args...).WithCause(cause)
}

func PaddingDelimiter(format string, args ...any) *Error {
	return ErrPaddingDelimiter.WithMessage(format, args...)
}

func TokenCreation(cause error, format string, args ...any) *Error {
	return ErrTokenCreation.WithMessage(format, args...).WithCause(cause)
}

func TokenVerification(cause error, format string, args ...any) *Error {
	return ErrTokenVerification.WithMessage(format, args...).WithCause(cause)
}

func RateLimited(format string, args ...any) *Error {
	return ErrRateLimited.WithMessage(format, args...)
}

// Generic constructors for the surrounding layers.

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}
