package vapid

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/errors"
)

// Verify checks the ES256 signature and the exp claim of token and returns its claims.
// Further checks, such as jwt.WithAudience, can be passed as opts.
func Verify(token string, publicKey *key.PublicKey, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	if publicKey == nil {
		return nil, errors.Precondition("public key must not be nil")
	}

	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithExpirationRequired(),
	}, opts...)

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return publicKey.ECDSA(), nil
	}, opts...)
	if err != nil {
		return nil, errors.TokenVerification(err, "token verification failed")
	}
	return claims, nil
}

// ParseAuthorization splits a "vapid t=<token>, k=<key>" header value.
func ParseAuthorization(value string) (token, publicKey string, err error) {
	scheme, params, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return "", "", errors.TokenVerification(nil, "authorization scheme must be %q", Scheme)
	}

	for _, param := range strings.Split(params, ",") {
		name, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "t":
			token = strings.TrimSpace(v)
		case "k":
			publicKey = strings.TrimSpace(v)
		}
	}

	if token == "" || publicKey == "" {
		return "", "", errors.TokenVerification(nil, "authorization must carry both t and k")
	}
	return token, publicKey, nil
}

// VerifyAuthorization verifies a complete header value against the key it carries.
func VerifyAuthorization(value string, opts ...jwt.ParserOption) (jwt.MapClaims, *key.PublicKey, error) {
	token, k, err := ParseAuthorization(value)
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := key.PublicKeyFromBase64(k)
	if err != nil {
		return nil, nil, err
	}
	claims, err := Verify(token, publicKey, opts...)
	if err != nil {
		return nil, nil, err
	}
	return claims, publicKey, nil
}
