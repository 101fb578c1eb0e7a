// Package key provides P-256 key material for Web Push.
//
// Public keys are validated against the curve once, when the handle is constructed, so every
// *PublicKey in circulation is known to be a genuine P-256 point. Private keys are only ever
// used for ECDH and ES256 signing.
package key

import (
	"bytes"
	"encoding/base64"
	"strings"
)

const (
	// CoordinateSize is the size in bytes of the X and Y coordinates of a P-256 point.
	CoordinateSize = 32

	// UncompressedSize is the size of an uncompressed point: 0x04 || X || Y.
	UncompressedSize = 1 + 2*CoordinateSize

	// UncompressedPointTag is the leading byte of an uncompressed point.
	UncompressedPointTag = 0x04
)

// x509Prefix is the SubjectPublicKeyInfo header of a P-256 key (id-ecPublicKey, prime256v1),
// up to and including the unused-bits byte of the BIT STRING.
var x509Prefix = []byte{
	0x30, 0x59, 0x30, 0x13, 0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
	0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07, 0x03, 0x42, 0x00,
}

// X509Size is the size of a P-256 SubjectPublicKeyInfo structure.
const X509Size = 26 + UncompressedSize

// UncompressedToX509 prepends the P-256 SubjectPublicKeyInfo header to an uncompressed point.
func UncompressedToX509(uncompressed []byte) []byte {
	out := make([]byte, 0, len(x509Prefix)+len(uncompressed))
	out = append(out, x509Prefix...)
	return append(out, uncompressed...)
}

// X509ToUncompressed strips the P-256 SubjectPublicKeyInfo header. ok is false when der does
// not carry the fixed P-256 header.
func X509ToUncompressed(der []byte) (uncompressed []byte, ok bool) {
	if len(der) != X509Size || !bytes.HasPrefix(der, x509Prefix) {
		return nil, false
	}
	return bytes.Clone(der[len(x509Prefix):]), true
}

// decodeBase64 accepts standard and URL-safe alphabets, with or without padding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	enc := base64.RawStdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.RawURLEncoding
	}
	return enc.DecodeString(strings.TrimRight(s, "="))
}
