// Package ece implements the aes128gcm content encoding (RFC 8188) as used by Web Push
// message encryption (RFC 8291).
//
// Every call to Encrypt produces exactly one record carrying a fresh ephemeral P-256 public key
// as its key id. No padding is added beyond the single delimiter octet, and the record size is
// not bounded: the rs header field holds the ciphertext length.
package ece

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/errors"
)

// Engine encrypts and decrypts single aes128gcm records.
//
// An Engine keeps a scratch buffer between calls and is not safe for concurrent use.
// Create one Engine per goroutine.
type Engine struct {
	random      io.Reader
	generateKey func(io.Reader) (*ecdh.PrivateKey, error)
	keyInfo     []byte
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the source of salts and ephemeral keys. Defaults to crypto/rand.Reader.
func WithRand(r io.Reader) Option {
	return func(e *Engine) {
		e.random = r
	}
}

// WithKeyGenerator replaces the ephemeral key generator.
func WithKeyGenerator(fn func(io.Reader) (*ecdh.PrivateKey, error)) Option {
	return func(e *Engine) {
		e.generateKey = fn
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		random:      rand.Reader,
		generateKey: ecdh.P256().GenerateKey,
		keyInfo:     make([]byte, 0, len(keyInfoPrefix)+2*key.UncompressedSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encrypt encrypts plaintext for the user agent owning keys.
//
// The encryption process:
// 1. Generate an ephemeral P-256 key pair and a random 16-byte salt
// 2. Perform ECDH with the user agent public key
// 3. Derive the content encryption key and nonce with HKDF-SHA256
// 4. Encrypt plaintext || 0x02 with AES-128-GCM
// 5. Return: [salt || rs || idlen || ephemeral_public_key || ciphertext]
func (e *Engine) Encrypt(keys *UserAgentKeys, plaintext []byte) (Record, error) {
	if keys == nil {
		return nil, errors.Precondition("user agent keys must not be nil")
	}
	if len(plaintext) == 0 {
		return nil, errors.Precondition("plaintext must not be empty")
	}

	ephemeral, err := e.generateKey(e.random)
	if err != nil {
		return nil, errors.CryptoOperation(err, "failed to generate the ephemeral key")
	}
	ephemeralPublic := ephemeral.PublicKey().Bytes()

	secret, err := ephemeral.ECDH(keys.public.ECDH())
	if err != nil {
		return nil, errors.CryptoOperation(err, "ECDH failed")
	}

	record := make([]byte, HeaderSize, len(plaintext)+Overhead)
	salt := record[:SaltSize]
	if _, err := io.ReadFull(e.random, salt); err != nil {
		return nil, errors.CryptoOperation(err, "failed to generate the salt")
	}

	aead, err := e.aead(keys, ephemeralPublic, salt, secret)
	if err != nil {
		return nil, err
	}

	binary.BigEndian.PutUint32(record[offsetRecordSize:], uint32(len(plaintext)+1+TagSize))
	record[offsetIDLen] = byte(len(ephemeralPublic))
	copy(record[offsetKeyID:], ephemeralPublic)

	// plaintext || 0x02 is staged right after the header and sealed in place.
	content := append(record[HeaderSize:HeaderSize], plaintext...)
	content = append(content, PaddingDelimiter)
	record = aead.Seal(record, aead.nonce, content, nil)

	return Record(record), nil
}

// Decrypt reverses Encrypt with the user agent private key matching keys.
func (e *Engine) Decrypt(keys *UserAgentKeys, encrypted []byte, priv *key.PrivateKey) ([]byte, error) {
	if keys == nil || priv == nil {
		return nil, errors.Precondition("user agent keys and private key must not be nil")
	}

	record, err := ParseRecord(encrypted)
	if err != nil {
		return nil, err
	}

	sender, err := key.PublicKeyFromUncompressed(record.KeyID())
	if err != nil {
		return nil, err
	}

	recipient, err := priv.ECDH()
	if err != nil {
		return nil, err
	}
	secret, err := recipient.ECDH(sender.ECDH())
	if err != nil {
		return nil, errors.CryptoOperation(err, "ECDH failed")
	}

	aead, err := e.aead(keys, record.KeyID(), record.Salt(), secret)
	if err != nil {
		return nil, err
	}

	content, err := aead.Open(nil, aead.nonce, record.Ciphertext(), nil)
	if err != nil {
		return nil, errors.CryptoOperation(err, "failed to decrypt the record")
	}
	return stripPadding(content)
}

type sealer struct {
	cipher.AEAD
	nonce []byte
}

// aead derives the content encryption key and nonce. senderPublic is the application server
// key: the fresh ephemeral key when encrypting, the record's key id when decrypting.
func (e *Engine) aead(keys *UserAgentKeys, senderPublic, salt, secret []byte) (*sealer, error) {
	e.keyInfo = append(e.keyInfo[:0], keyInfoPrefix...)
	e.keyInfo = append(e.keyInfo, keys.public.Uncompressed()...)
	e.keyInfo = append(e.keyInfo, senderPublic...)

	cek, nonce, err := deriveKeys(e.keyInfo, salt, secret, keys.authSecret)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, errors.CryptoOperation(err, "failed to create AES cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.CryptoOperation(err, "failed to create GCM")
	}
	return &sealer{AEAD: gcm, nonce: nonce}, nil
}

// stripPadding removes the trailing zero padding and the delimiter.
func stripPadding(content []byte) ([]byte, error) {
	for i := len(content) - 1; i >= 0; i-- {
		switch content[i] {
		case 0:
			continue
		case PaddingDelimiter:
			return content[:i], nil
		default:
			return nil, errors.PaddingDelimiter("the record must end with the padding delimiter 0x02, got 0x%02x", content[i])
		}
	}
	return nil, errors.PaddingDelimiter("the record contains no non-zero octet")
}
