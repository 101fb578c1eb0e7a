package vapid

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/errors"
)

// Generator creates a signed token for a Param.
type Generator interface {
	Generate(param *Param) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(param *Param) (string, error)

// Generate calls f(param).
func (f GeneratorFunc) Generate(param *Param) (string, error) {
	return f(param)
}

// ES256Generator is the default Generator. It is safe for concurrent use.
type ES256Generator struct {
	privateKey *key.PrivateKey
	random     io.Reader
}

// NewES256Generator creates a generator signing with privateKey.
func NewES256Generator(privateKey *key.PrivateKey) (*ES256Generator, error) {
	if privateKey == nil {
		return nil, errors.Precondition("private key must not be nil")
	}
	return &ES256Generator{privateKey: privateKey, random: rand.Reader}, nil
}

var encodedHeader = base64.RawURLEncoding.EncodeToString([]byte(Header))

// Generate returns base64url(header) "." base64url(payload) "." base64url(r || s).
func (g *ES256Generator) Generate(param *Param) (string, error) {
	if param == nil {
		return "", errors.Precondition("param must not be nil")
	}

	signingInput := encodedHeader + "." + base64.RawURLEncoding.EncodeToString([]byte(param.Payload()))

	digest := sha256.Sum256([]byte(signingInput))
	der, err := ecdsa.SignASN1(g.random, g.privateKey.ECDSA(), digest[:])
	if err != nil {
		return "", errors.TokenCreation(err, "failed to sign the token")
	}

	raw, err := DERToRaw(der)
	if err != nil {
		return "", err
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(raw), nil
}
