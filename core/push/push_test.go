package push

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/core/vapid"
)

// userAgent is the browser side of a subscription.
type userAgent struct {
	priv *key.PrivateKey
	sub  *Subscription
}

func newUserAgent(t *testing.T, endpoint string) *userAgent {
	t.Helper()
	priv, err := key.Generate()
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &userAgent{
		priv: priv,
		sub: &Subscription{
			Endpoint: endpoint,
			Keys: Keys{
				P256dh: priv.Public().UncompressedBase64(),
				Auth:   base64.RawURLEncoding.EncodeToString(auth),
			},
		},
	}
}

func newKeyPair(t *testing.T) *vapid.KeyPair {
	t.Helper()
	priv, err := key.Generate()
	require.NoError(t, err)
	kp, err := vapid.NewKeyPairFromPrivateKey(priv)
	require.NoError(t, err)
	return kp
}
