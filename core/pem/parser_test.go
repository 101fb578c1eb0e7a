package pem

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/errors"
)

const publicKeyPEM = `-----BEGIN PUBLIC KEY-----
MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAEcf1Pqs7FRyfLjkEodWSWw6NJ24J0
ybmgWAXBt/PtANZ0GOVJ0C1QoMPzrKGj9n0btn+M8zqYbBkh4MqnRmRN3w==
-----END PUBLIC KEY-----
`

func TestParseStandard(t *testing.T) {
	der, err := Parse(publicKeyPEM, LabelPublicKey)
	require.NoError(t, err)
	assert.Len(t, der, 91)
	assert.Equal(t, byte(0x04), der[26], "uncompressed point tag follows the P-256 prefix")
}

func TestParseLenientSurroundings(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"crlf", strings.ReplaceAll(publicKeyPEM, "\n", "\r\n")},
		{"cr", strings.ReplaceAll(publicKeyPEM, "\n", "\r")},
		{"explanatory text", "Subject: push\nIssuer: me\n" + publicKeyPEM + "trailing garbage !!!"},
		{"whitespace after begin", strings.Replace(publicKeyPEM, "KEY-----\n", "KEY----- \t\n", 1)},
		{"blank lines before body", strings.Replace(publicKeyPEM, "KEY-----\n", "KEY-----\n\n  \n", 1)},
		{"trailing whitespace on body lines", strings.Replace(publicKeyPEM, "J24J0\n", "J24J0 \t\n", 1)},
		{"blank line before end", strings.Replace(publicKeyPEM, "==\n", "==\n\n", 1)},
	}

	want, err := Parse(publicKeyPEM, LabelPublicKey)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, LabelPublicKey)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		boundary string
		line     string
	}{
		{"missing begin", strings.Replace(publicKeyPEM, "-----BEGIN PUBLIC KEY-----", "", 1), "-----BEGIN PUBLIC KEY-----", ""},
		{"missing end", strings.Replace(publicKeyPEM, "-----END PUBLIC KEY-----\n", "", 1), "-----END PUBLIC KEY-----", ""},
		{"wrong end label", strings.Replace(publicKeyPEM, "END PUBLIC KEY", "END PRIVATE KEY", 1), "-----END PUBLIC KEY-----", ""},
		{"garbage after begin", strings.Replace(publicKeyPEM, "KEY-----\n", "KEY----- x\n", 1), "", "1"},
		{"illegal body character", strings.Replace(publicKeyPEM, "J24J0", "J2*J0", 1), "", "2"},
		{"whitespace inside line", strings.Replace(publicKeyPEM, "J24J0", "J2 4J0", 1), "", "2"},
		{"blank line inside body", strings.Replace(publicKeyPEM, "J24J0\n", "J24J0\n\n", 1), "", "4"},
		{"blank line after padding", strings.Replace(publicKeyPEM, "==\n", "==\n\nAAAA\n", 1), "", "4"},
		{"three pads", strings.Replace(publicKeyPEM, "3w==", "3===", 1), "", "3"},
		{"data after pad", strings.Replace(publicKeyPEM, "3w==", "3w=A", 1), "", "3"},
		{"pad after whitespace", strings.Replace(publicKeyPEM, "3w==", "3w ==", 1), "", "3"},
		{"end not at line start", strings.Replace(publicKeyPEM, "==\n-----END", "== -----END", 1), "", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, LabelPublicKey)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrPEMFormat)

			md := errors.FromError(err).GetMetadata()
			if tt.boundary != "" {
				assert.Equal(t, tt.boundary, md["boundary"])
			}
			if tt.line != "" {
				assert.Equal(t, tt.line, md["line"])
			}
		})
	}
}

func TestParseUndecodableBody(t *testing.T) {
	text := "-----BEGIN X-----\nA\n-----END X-----\n"
	_, err := Parse(text, "X")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrPEMFormat)
	assert.Contains(t, err.Error(), "can't be decoded")
}

func TestParseUnpaddedBody(t *testing.T) {
	got, err := Parse("-----BEGIN X-----\nAQI\n-----END X-----", "X")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got)
}

func TestValidateLabel(t *testing.T) {
	valid := []string{"PRIVATE KEY", "PUBLIC KEY", "EC-PARAMS", "X", "A B-C", ""}
	for _, label := range valid {
		assert.NoError(t, ValidateLabel(label), label)
	}

	invalid := []string{" KEY", "KEY ", "-KEY", "KEY-", "A  B", "A--B", "A -B", "A\tB", "KEY\n", "ключ"}
	for _, label := range invalid {
		err := ValidateLabel(label)
		assert.ErrorIs(t, err, errors.ErrPEMFormat, label)
	}

	_, err := NewParser("BAD  LABEL")
	assert.ErrorIs(t, err, errors.ErrPEMFormat)
}

func TestRoundTrip(t *testing.T) {
	labels := []string{LabelPrivateKey, LabelPublicKey, "CERTIFICATE"}
	sizes := []int{1, 2, 3, 47, 48, 49, 64, 91, 138, 1000}

	for _, label := range labels {
		for _, size := range sizes {
			data := make([]byte, size)
			_, err := rand.Read(data)
			require.NoError(t, err)

			text, err := Encode(data, label)
			require.NoError(t, err)

			got, err := Parse(text, label)
			require.NoError(t, err, "label=%s size=%d", label, size)
			assert.True(t, bytes.Equal(data, got), "label=%s size=%d", label, size)
		}
	}
}

func TestEncodeRejectsInvalidLabel(t *testing.T) {
	_, err := Encode([]byte{1}, "-BAD")
	assert.ErrorIs(t, err, errors.ErrPEMFormat)
}

func BenchmarkParse(b *testing.B) {
	p, err := NewParser(LabelPublicKey)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(publicKeyPEM); err != nil {
			b.Fatal(err)
		}
	}
}
