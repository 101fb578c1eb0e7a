package vapid

import (
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/kochabx/webpush/core/internal"
	"github.com/kochabx/webpush/errors"
)

const (
	// scalarSize is the fixed width of r and s in a JWS ES256 signature.
	scalarSize = 32

	// RawSignatureSize is the size of an ES256 JWS signature, r || s.
	RawSignatureSize = 2 * scalarSize
)

// DERToRaw converts an ASN.1 ECDSA-Sig-Value, SEQUENCE { r INTEGER, s INTEGER }, into the
// fixed-width r || s form of RFC 7518 section 3.4.
func DERToRaw(der []byte) ([]byte, error) {
	var (
		input = cryptobyte.String(der)
		inner cryptobyte.String
		r, s  cryptobyte.String
	)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1(&r, asn1.INTEGER) ||
		!inner.ReadASN1(&s, asn1.INTEGER) || !inner.Empty() {
		return nil, errors.TokenCreation(nil, "the format of the signature isn't valid DER")
	}

	raw := make([]byte, 0, RawSignatureSize)
	for _, v := range []cryptobyte.String{r, s} {
		fixed, err := toFixedWidth(v)
		if err != nil {
			return nil, err
		}
		raw = append(raw, fixed...)
	}
	return raw, nil
}

// toFixedWidth normalizes a DER INTEGER body of 31, 32 or 33 bytes to 32 bytes.
func toFixedWidth(v []byte) ([]byte, error) {
	switch len(v) {
	case scalarSize + 1:
		if v[0] != 0 {
			return nil, errors.TokenCreation(nil, "the signature integer has a non-zero sign octet")
		}
		return v[1:], nil
	case scalarSize:
		return v, nil
	case scalarSize - 1:
		return internal.ZeroPad(v, scalarSize), nil
	}
	return nil, errors.TokenCreation(nil, "the signature integer is %d bytes, expected %d to %d", len(v), scalarSize-1, scalarSize+1)
}
