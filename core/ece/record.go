package ece

import (
	"bytes"
	"encoding/binary"

	"github.com/kochabx/webpush/errors"
)

// Record is a single aes128gcm record:
//
//	salt(16) || rs(4) || idlen(1) || keyid(idlen) || ciphertext
type Record []byte

// ParseRecord checks the framing of b and returns it as a Record.
func ParseRecord(b []byte) (Record, error) {
	if len(b) < minHeaderSize {
		return nil, errors.CryptoOperation(nil, "record is %d bytes, shorter than the %d-byte header", len(b), minHeaderSize)
	}
	idLen := int(b[offsetIDLen])
	if len(b) < minHeaderSize+idLen+TagSize {
		return nil, errors.CryptoOperation(nil, "record is truncated")
	}
	return Record(b), nil
}

// Salt returns the salt of the record.
func (r Record) Salt() []byte {
	return r[:SaltSize]
}

// RecordSize returns the rs header field.
func (r Record) RecordSize() uint32 {
	return binary.BigEndian.Uint32(r[offsetRecordSize:])
}

// KeyID returns the key id, the sender's uncompressed ephemeral public key.
func (r Record) KeyID() []byte {
	idLen := int(r[offsetIDLen])
	return r[offsetKeyID : offsetKeyID+idLen]
}

// Ciphertext returns the encrypted content including the authentication tag.
func (r Record) Ciphertext() []byte {
	return r[offsetKeyID+int(r[offsetIDLen]):]
}

// Bytes returns a copy of the record.
func (r Record) Bytes() []byte {
	return bytes.Clone(r)
}

// Len returns the size of the record in bytes.
func (r Record) Len() int {
	return len(r)
}
