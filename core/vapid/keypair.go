package vapid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/core/vapid/cache"
	"github.com/kochabx/webpush/errors"
)

// KeyPair is the application server identity: a signing key and the public key handed to user
// agents as applicationServerKey.
type KeyPair struct {
	privateKey *key.PrivateKey
	publicKey  *key.PublicKey
	generator  Generator
	cache      cache.TokenCache
	margin     time.Duration
}

// KeyPairOption configures a KeyPair.
type KeyPairOption func(*KeyPair)

// WithGenerator replaces the default ES256 generator.
func WithGenerator(g Generator) KeyPairOption {
	return func(kp *KeyPair) {
		kp.generator = g
	}
}

// WithTokenCache reuses tokens for identical claims until shortly before they expire.
func WithTokenCache(c cache.TokenCache) KeyPairOption {
	return func(kp *KeyPair) {
		kp.cache = c
	}
}

// WithCacheMargin sets how long before expiry a cached token stops being reused.
// Defaults to one minute.
func WithCacheMargin(d time.Duration) KeyPairOption {
	return func(kp *KeyPair) {
		kp.margin = d
	}
}

// NewKeyPair creates a KeyPair from a private key and its public key.
func NewKeyPair(privateKey *key.PrivateKey, publicKey *key.PublicKey, opts ...KeyPairOption) (*KeyPair, error) {
	if privateKey == nil || publicKey == nil {
		return nil, errors.Precondition("private key and public key must not be nil")
	}

	kp := &KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		cache:      cache.NewNoopTokenCache(),
		margin:     time.Minute,
	}
	for _, opt := range opts {
		opt(kp)
	}

	if kp.generator == nil {
		g, err := NewES256Generator(privateKey)
		if err != nil {
			return nil, err
		}
		kp.generator = g
	}
	return kp, nil
}

// NewKeyPairFromPrivateKey derives the public key from privateKey.
func NewKeyPairFromPrivateKey(privateKey *key.PrivateKey, opts ...KeyPairOption) (*KeyPair, error) {
	if privateKey == nil {
		return nil, errors.Precondition("private key must not be nil")
	}
	return NewKeyPair(privateKey, privateKey.Public(), opts...)
}

// PublicKey returns the public key.
func (kp *KeyPair) PublicKey() *key.PublicKey {
	return kp.publicKey
}

// PublicKeyUncompressed returns the 65-byte uncompressed public key.
func (kp *KeyPair) PublicKeyUncompressed() []byte {
	return kp.publicKey.Uncompressed()
}

// PublicKeyBase64 returns the uncompressed public key as unpadded base64url.
func (kp *KeyPair) PublicKeyBase64() string {
	return kp.publicKey.UncompressedBase64()
}

// Token returns a signed token for param, from the cache when possible.
func (kp *KeyPair) Token(ctx context.Context, param *Param) (string, error) {
	if param == nil {
		return "", errors.Precondition("param must not be nil")
	}

	cacheKey := kp.cacheKey(param)
	if token, err := kp.cache.Get(ctx, cacheKey); err == nil {
		return token, nil
	}

	token, err := kp.generator.Generate(param)
	if err != nil {
		return "", err
	}

	if ttl := time.Until(param.ExpiresAt()) - kp.margin; ttl > 0 {
		// best effort
		_ = kp.cache.Set(ctx, cacheKey, token, ttl)
	}
	return token, nil
}

// AuthorizationHeader returns the Authorization header value
// "vapid t=<token>, k=<base64url public key>".
func (kp *KeyPair) AuthorizationHeader(ctx context.Context, param *Param) (string, error) {
	token, err := kp.Token(ctx, param)
	if err != nil {
		return "", err
	}
	return Scheme + " t=" + token + ", k=" + kp.publicKey.UncompressedBase64(), nil
}

// cacheKey identifies a token by signing key and claims.
func (kp *KeyPair) cacheKey(param *Param) string {
	h := sha256.New()
	h.Write(kp.publicKey.Uncompressed())
	h.Write([]byte(param.Payload()))
	return hex.EncodeToString(h.Sum(nil))
}
