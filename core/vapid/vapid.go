// Package vapid creates the signed tokens an application server presents to push services
// (RFC 8292).
//
// A token is a compact ES256 JWT whose payload is assembled by hand with a fixed key order:
// aud, exp, the optional sub, then additional claims in insertion order.
//
// Example usage:
//
//	param, err := vapid.NewParamBuilder().
//	    ResourceURLString(subscription.Endpoint).
//	    ExpiresAfter(15 * time.Minute).
//	    Subject("mailto:admin@example.com").
//	    Build()
//	if err != nil {
//	    return err
//	}
//	header, err := keyPair.AuthorizationHeader(ctx, param)
package vapid

import "time"

const (
	// Header is the fixed JOSE header of every token.
	Header = `{"typ":"JWT","alg":"ES256"}`

	// Algorithm is the JWS algorithm of every token.
	Algorithm = "ES256"

	// Scheme is the HTTP authentication scheme of the Authorization header.
	Scheme = "vapid"

	// DefaultExpiration is used by ParamBuilder.BuildWithDefault.
	DefaultExpiration = 12 * time.Hour

	// MaxExpiration is the largest lifetime push services are required to accept.
	MaxExpiration = 24 * time.Hour
)
