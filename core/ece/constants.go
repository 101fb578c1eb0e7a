package ece

import "github.com/kochabx/webpush/core/key"

// ContentEncoding is the Content-Encoding token of records produced by this package.
const ContentEncoding = "aes128gcm"

// Record framing
const (
	// SaltSize is the size of the random salt that starts every record.
	SaltSize = 16

	// RecordSizeLen is the size of the big-endian record size field.
	RecordSizeLen = 4

	// KeyIDLen is the key id length written by Encrypt: one uncompressed P-256 point.
	KeyIDLen = key.UncompressedSize

	// HeaderSize is the size of the header written by Encrypt.
	// Format: [salt:16][rs:4][idlen:1][keyid:65]
	HeaderSize = SaltSize + RecordSizeLen + 1 + KeyIDLen

	// minHeaderSize is the header size with an empty key id.
	minHeaderSize = SaltSize + RecordSizeLen + 1

	offsetRecordSize = SaltSize
	offsetIDLen      = SaltSize + RecordSizeLen
	offsetKeyID      = offsetIDLen + 1
)

// Content encryption parameters
const (
	// AuthSecretSize is the size of the user agent authentication secret.
	AuthSecretSize = 16

	// TagSize is the size of the AES-GCM authentication tag.
	TagSize = 16

	// PaddingDelimiter terminates the content of the last (and only) record.
	PaddingDelimiter = 0x02

	cekSize   = 16
	nonceSize = 12
	ikmSize   = 32
)

// Overhead is the number of bytes Encrypt adds to a plaintext.
const Overhead = HeaderSize + 1 + TagSize

var (
	keyInfoPrefix = []byte("WebPush: info\x00")
	cekInfo       = []byte("Content-Encoding: aes128gcm\x00")
	nonceInfo     = []byte("Content-Encoding: nonce\x00")
)
