package push

import (
	"bytes"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/errors"
)

// Message is a non-empty plaintext push payload.
type Message struct {
	data []byte
}

// NewMessage copies b into a Message.
func NewMessage(b []byte) (*Message, error) {
	if len(b) == 0 {
		return nil, errors.Precondition("message bytes must not be empty")
	}
	return &Message{data: bytes.Clone(b)}, nil
}

// NewTextMessage creates a Message from UTF-8 text.
func NewTextMessage(text string) (*Message, error) {
	if text == "" {
		return nil, errors.Precondition("message text must not be empty")
	}
	return &Message{data: []byte(text)}, nil
}

// Bytes returns a copy of the payload.
func (m *Message) Bytes() []byte {
	return bytes.Clone(m.data)
}

// Len returns the payload length.
func (m *Message) Len() int {
	return len(m.data)
}

// EncryptedMessage is an aes128gcm record ready to be sent as a request body.
type EncryptedMessage struct {
	record    ece.Record
	mediaType string
}

// EncryptedMessageOption configures an EncryptedMessage.
type EncryptedMessageOption func(*EncryptedMessage)

// WithMediaType overrides the Content-Type of the request body. An empty value keeps
// DefaultMediaType.
func WithMediaType(mediaType string) EncryptedMessageOption {
	return func(m *EncryptedMessage) {
		if mediaType != "" {
			m.mediaType = mediaType
		}
	}
}

// NewEncryptedMessage wraps an encrypted record.
func NewEncryptedMessage(record ece.Record, opts ...EncryptedMessageOption) *EncryptedMessage {
	m := &EncryptedMessage{record: record, mediaType: DefaultMediaType}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bytes returns a copy of the record.
func (m *EncryptedMessage) Bytes() []byte {
	return bytes.Clone(m.record)
}

func (m *EncryptedMessage) Len() int {
	return m.record.Len()
}

// Record returns the underlying record.
func (m *EncryptedMessage) Record() ece.Record {
	return m.record
}

func (m *EncryptedMessage) ContentEncoding() string {
	return ece.ContentEncoding
}

func (m *EncryptedMessage) MediaType() string {
	return m.mediaType
}
