package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(401, "unauthorized access")
	if err.GetCode() != 401 {
		t.Errorf("expected code 401, got %d", err.GetCode())
	}
	if err.GetMessage() != "unauthorized access" {
		t.Errorf("expected message 'unauthorized access', got %s", err.GetMessage())
	}

	t.Logf("Error: %s", err.Error())
}

func TestWithMetadata(t *testing.T) {
	err := PEMFormat("bad base64")

	err2 := err.WithMetadata(map[string]string{})
	if err != err2 {
		t.Error("WithMetadata with empty map should return same instance")
	}

	err3 := err.WithMetadata(map[string]string{"line": "3", "label": "PUBLIC KEY"})
	if err == err3 {
		t.Error("WithMetadata should return new instance")
	}

	metadata := err3.GetMetadata()
	if metadata["line"] != "3" || metadata["label"] != "PUBLIC KEY" {
		t.Errorf("metadata not set correctly: %v", metadata)
	}

	want := "code=422, reason=PEM_FORMAT, message=bad base64, metadata={label=PUBLIC KEY, line=3}"
	if err3.Error() != want {
		t.Errorf("unexpected error string\nwant: %s\ngot:  %s", want, err3.Error())
	}
}

func TestWithCause(t *testing.T) {
	originalErr := errors.New("aes: invalid key size 3")
	err := CryptoOperation(originalErr, "failed to create cipher")

	if err.GetCause() != originalErr {
		t.Error("cause not set correctly")
	}
	if !errors.Is(err, originalErr) {
		t.Error("errors.Is should reach the cause")
	}

	t.Logf("Error with cause: %s", err.Error())
}

func TestIsMatchesReason(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind different message", PEMFormat("missing END boundary"), ErrPEMFormat, true},
		{"wrapped by fmt", fmt.Errorf("load key: %w", PublicKeyValidation("point at infinity")), ErrPublicKeyValidation, true},
		{"different reason same code", UncompressedPointFormat("short"), ErrPublicKeyValidation, false},
		{"different code", Precondition("empty"), ErrCryptoOperation, false},
		{"plain error", errors.New("x"), ErrPrecondition, false},
		{"no reason falls back to message", New(404, "not found"), New(404, "not found"), true},
		{"no reason message differs", New(404, "not found"), New(404, "gone"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReason(t *testing.T) {
	if got := Reason(fmt.Errorf("wrap: %w", PaddingDelimiter("no 0x02"))); got != ReasonPaddingDelimiter {
		t.Errorf("expected %s, got %s", ReasonPaddingDelimiter, got)
	}
	if got := Reason(errors.New("plain")); got != UnknownReason {
		t.Errorf("expected empty reason, got %s", got)
	}
}

func TestCode(t *testing.T) {
	if got := Code(fmt.Errorf("wrap: %w", RateLimited("host busy"))); got != CodeRateLimited {
		t.Errorf("expected %d, got %d", CodeRateLimited, got)
	}
	if got := Code(errors.New("plain")); got != UnknownCode {
		t.Errorf("expected %d, got %d", UnknownCode, got)
	}
}

func TestSentinelsAreNotMutated(t *testing.T) {
	_ = ErrTokenCreation.WithMessage("signature is not DER").WithMetadata(map[string]string{"len": "70"})
	if ErrTokenCreation.GetMessage() != "failed to create VAPID token" {
		t.Errorf("sentinel message changed: %s", ErrTokenCreation.GetMessage())
	}
	if ErrTokenCreation.GetMetadata() != nil {
		t.Error("sentinel metadata changed")
	}
}

func TestErrorChaining(t *testing.T) {
	ioErr := errors.New("open key.pem: no such file")
	keyErr := Wrap(ioErr, 500, "failed to load key")
	apiErr := keyErr.WithMetadata(map[string]string{"path": "key.pem"})

	if !errors.Is(apiErr, ioErr) {
		t.Error("chain lost the io error")
	}
	t.Logf("Error chain: %s", apiErr.Error())
}

func TestFromError(t *testing.T) {
	stdErr := errors.New("standard error")
	wrappedErr := FromError(stdErr)

	if wrappedErr.GetCode() != UnknownCode {
		t.Errorf("expected code %d, got %d", UnknownCode, wrappedErr.GetCode())
	}

	existingErr := KeyExtraction(nil, "not PKCS8")
	sameErr := FromError(fmt.Errorf("ctx: %w", existingErr))

	if existingErr != sameErr {
		t.Error("FromError should return the *Error found in the chain")
	}
}

func TestNewWithMetadata(t *testing.T) {
	metadata := map[string]string{"service": "push", "version": "v2"}
	err := NewWithMetadata(401, metadata, "authentication failed")

	if err.GetCode() != 401 {
		t.Errorf("expected code 401, got %d", err.GetCode())
	}

	resultMetadata := err.GetMetadata()
	if resultMetadata["service"] != "push" || resultMetadata["version"] != "v2" {
		t.Errorf("metadata not set correctly: %v", resultMetadata)
	}
}

func BenchmarkNewError(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = New(500, "internal server error")
	}
}

func BenchmarkErrorString(b *testing.B) {
	err := PEMFormat("bad line").
		WithMetadata(map[string]string{"line": "4", "label": "PRIVATE KEY"}).
		WithCause(errors.New("illegal base64 data at input byte 3"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = err.Error()
	}
}
