package ece

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/errors"
)

// UserAgentKeys is the encryption key material published by a user agent in its push
// subscription: the receiver's public key and the authentication secret.
type UserAgentKeys struct {
	public     *key.PublicKey
	authSecret []byte
}

// NewUserAgentKeys creates key material from a validated public key and a 16-byte secret.
func NewUserAgentKeys(public *key.PublicKey, authSecret []byte) (*UserAgentKeys, error) {
	if public == nil {
		return nil, errors.Precondition("user agent public key must not be nil")
	}
	if len(authSecret) != AuthSecretSize {
		return nil, errors.Precondition("auth secret must be %d bytes, got %d", AuthSecretSize, len(authSecret))
	}
	return &UserAgentKeys{public: public, authSecret: bytes.Clone(authSecret)}, nil
}

// UserAgentKeysFromBase64 decodes the p256dh and auth fields of a subscription.
// Both are base64url, padding optional.
func UserAgentKeysFromBase64(p256dh, auth string) (*UserAgentKeys, error) {
	raw, err := decodeBase64URL(p256dh)
	if err != nil {
		return nil, errors.UncompressedPointFormat("p256dh is not valid base64url").WithCause(err)
	}
	public, err := key.PublicKeyFromUncompressed(raw)
	if err != nil {
		return nil, err
	}

	secret, err := decodeBase64URL(auth)
	if err != nil {
		return nil, errors.Precondition("auth is not valid base64url").WithCause(err)
	}
	return NewUserAgentKeys(public, secret)
}

// PublicKey returns the user agent public key.
func (k *UserAgentKeys) PublicKey() *key.PublicKey {
	return k.public
}

// AuthSecret returns a copy of the authentication secret.
func (k *UserAgentKeys) AuthSecret() []byte {
	return bytes.Clone(k.authSecret)
}

func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
}
