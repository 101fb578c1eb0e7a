// Package pem parses and emits the textual key encoding described in RFC 7468.
//
// Unlike encoding/pem, the parser follows the "standard" grammar strictly: the BEGIN line may
// only be followed by horizontal whitespace, body lines are base64 text with optional trailing
// whitespace, padding may appear only at the end, and every violation is reported with the
// line it occurred on. Text before the BEGIN boundary and after the END boundary is ignored.
//
// Example usage:
//
//	p, err := pem.NewParser(pem.LabelPrivateKey)
//	if err != nil {
//	    return err
//	}
//	der, err := p.Parse(text)
package pem

const (
	// LabelPrivateKey is the label of PKCS8 private keys.
	LabelPrivateKey = "PRIVATE KEY"
	// LabelPublicKey is the label of X.509 SubjectPublicKeyInfo public keys.
	LabelPublicKey = "PUBLIC KEY"

	beginBoundaryFormat = "-----BEGIN %s-----"
	endBoundaryFormat   = "-----END %s-----"
	endBoundaryPrefix   = "-----END"
)
