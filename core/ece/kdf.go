package ece

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/kochabx/webpush/errors"
)

// deriveKeys runs the two HKDF stages of RFC 8291 and RFC 8188:
//
//	PRK_key = HKDF-Extract(auth_secret, ecdh_secret)
//	IKM     = HKDF-Expand(PRK_key, key_info, 32)
//	PRK     = HKDF-Extract(salt, IKM)
//	CEK     = HKDF-Expand(PRK, cek_info, 16)
//	NONCE   = HKDF-Expand(PRK, nonce_info, 12)
func deriveKeys(keyInfo, salt, ecdhSecret, authSecret []byte) (cek, nonce []byte, err error) {
	prkKey := hkdf.Extract(sha256.New, ecdhSecret, authSecret)

	ikm, err := expand(prkKey, keyInfo, ikmSize)
	if err != nil {
		return nil, nil, err
	}

	prk := hkdf.Extract(sha256.New, ikm, salt)

	if cek, err = expand(prk, cekInfo, cekSize); err != nil {
		return nil, nil, err
	}
	if nonce, err = expand(prk, nonceInfo, nonceSize); err != nil {
		return nil, nil, err
	}
	return cek, nonce, nil
}

func expand(prk, info []byte, length int) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), out); err != nil {
		return nil, errors.CryptoOperation(err, "key derivation failed")
	}
	return out, nil
}
