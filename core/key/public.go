package key

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"math/big"
	"os"

	"github.com/kochabx/webpush/core/internal"
	"github.com/kochabx/webpush/core/pem"
	"github.com/kochabx/webpush/errors"
)

// PublicKey is a validated P-256 public key. It is immutable and safe for concurrent use.
type PublicKey struct {
	ecdsaKey     *ecdsa.PublicKey
	ecdhKey      *ecdh.PublicKey
	uncompressed []byte
}

// PublicKeyFromUncompressed creates a public key from the 65-byte uncompressed form.
func PublicKeyFromUncompressed(uncompressed []byte) (*PublicKey, error) {
	if len(uncompressed) != UncompressedSize {
		return nil, errors.UncompressedPointFormat("the length of an uncompressed point must be %d, got %d", UncompressedSize, len(uncompressed))
	}
	if uncompressed[0] != UncompressedPointTag {
		return nil, errors.UncompressedPointFormat("an uncompressed point must start with 0x04, got 0x%02x", uncompressed[0])
	}

	x := new(big.Int).SetBytes(uncompressed[1 : 1+CoordinateSize])
	y := new(big.Int).SetBytes(uncompressed[1+CoordinateSize:])
	return newPublicKey(x, y)
}

// PublicKeyFromX509 creates a public key from a DER-encoded SubjectPublicKeyInfo.
func PublicKeyFromX509(der []byte) (*PublicKey, error) {
	if uncompressed, ok := X509ToUncompressed(der); ok {
		return PublicKeyFromUncompressed(uncompressed)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.KeyExtraction(err, "failed to parse the X.509 public key")
	}
	ecdsaKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.KeyExtraction(nil, "the X.509 public key is a %T, not an EC key", parsed)
	}
	return PublicKeyFromECDSA(ecdsaKey)
}

// PublicKeyFromPEM creates a public key from "-----BEGIN PUBLIC KEY-----" text.
func PublicKeyFromPEM(text string) (*PublicKey, error) {
	return PublicKeyFromPEMWithLabel(text, pem.LabelPublicKey)
}

// PublicKeyFromPEMWithLabel is like PublicKeyFromPEM with a custom boundary label.
func PublicKeyFromPEMWithLabel(text, label string) (*PublicKey, error) {
	der, err := pem.Parse(text, label)
	if err != nil {
		return nil, err
	}
	return PublicKeyFromX509(der)
}

// PublicKeyFromBase64 accepts either the uncompressed point or the X.509 encoding, in
// standard or URL-safe base64 with or without padding.
func PublicKeyFromBase64(s string) (*PublicKey, error) {
	raw, err := decodeBase64(s)
	if err != nil {
		return nil, errors.KeyExtraction(err, "the public key is not valid base64")
	}
	if len(raw) == UncompressedSize {
		return PublicKeyFromUncompressed(raw)
	}
	return PublicKeyFromX509(raw)
}

// PublicKeyFromECDSA wraps an existing P-256 ecdsa public key.
func PublicKeyFromECDSA(k *ecdsa.PublicKey) (*PublicKey, error) {
	if k == nil {
		return nil, errors.Precondition("public key must not be nil")
	}
	if k.Curve == nil || k.Curve.Params().Name != p256.name {
		return nil, errors.KeyExtraction(nil, "the public key is not on %s", p256.name)
	}
	return newPublicKey(k.X, k.Y)
}

// LoadPublicKeyPEM reads a PEM file containing an X.509 public key.
func LoadPublicKeyPEM(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.KeyExtraction(err, "failed to read public key file %s", path)
	}
	return PublicKeyFromPEM(string(data))
}

// LoadPublicKeyDER reads a DER file containing an X.509 public key.
func LoadPublicKeyDER(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.KeyExtraction(err, "failed to read public key file %s", path)
	}
	return PublicKeyFromX509(data)
}

func newPublicKey(x, y *big.Int) (*PublicKey, error) {
	if err := Validate(x, y); err != nil {
		return nil, err
	}

	uncompressed := make([]byte, 0, UncompressedSize)
	uncompressed = append(uncompressed, UncompressedPointTag)
	uncompressed = append(uncompressed, internal.ZeroPad(x.Bytes(), CoordinateSize)...)
	uncompressed = append(uncompressed, internal.ZeroPad(y.Bytes(), CoordinateSize)...)

	ecdhKey, err := ecdh.P256().NewPublicKey(uncompressed)
	if err != nil {
		return nil, errors.PublicKeyValidation("the point is rejected by ECDH").WithCause(err)
	}

	return &PublicKey{
		ecdsaKey: &ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).Set(x),
			Y:     new(big.Int).Set(y),
		},
		ecdhKey:      ecdhKey,
		uncompressed: uncompressed,
	}, nil
}

// ECDSA returns the key for signature verification.
func (pub *PublicKey) ECDSA() *ecdsa.PublicKey {
	return pub.ecdsaKey
}

// ECDH returns the key for key agreement.
func (pub *PublicKey) ECDH() *ecdh.PublicKey {
	return pub.ecdhKey
}

// Uncompressed returns a copy of the 65-byte uncompressed form.
func (pub *PublicKey) Uncompressed() []byte {
	return bytes.Clone(pub.uncompressed)
}

// UncompressedBase64 returns the uncompressed form as unpadded base64url, the encoding used by
// the p256dh subscription field and the k parameter of a VAPID authorization.
func (pub *PublicKey) UncompressedBase64() string {
	return base64.RawURLEncoding.EncodeToString(pub.uncompressed)
}

// X509 returns the DER-encoded SubjectPublicKeyInfo.
func (pub *PublicKey) X509() []byte {
	return UncompressedToX509(pub.uncompressed)
}

// PEM returns the "-----BEGIN PUBLIC KEY-----" text of the key.
func (pub *PublicKey) PEM() string {
	text, _ := pem.Encode(pub.X509(), pem.LabelPublicKey)
	return text
}

// Equal compares two public keys in constant time.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return subtle.ConstantTimeCompare(pub.uncompressed, other.uncompressed) == 1
}
