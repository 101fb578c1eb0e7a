package push

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/core/vapid"
	"github.com/kochabx/webpush/errors"
)

// Request is a prepared push request. Message is nil for a request without payload.
type Request struct {
	ID            string
	Endpoint      string
	Authorization string
	TTL           int64
	Urgency       Urgency
	Topic         string
	Message       *EncryptedMessage
}

// HTTPRequest builds the POST request for the push service.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body []byte
	if r.Message != nil {
		body = r.Message.Bytes()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Precondition("invalid endpoint %q", r.Endpoint).WithCause(err)
	}

	req.Header.Set(HeaderAuthorization, r.Authorization)
	req.Header.Set(HeaderTTL, strconv.FormatInt(r.TTL, 10))
	req.Header.Set(HeaderUrgency, r.Urgency.String())
	if r.Topic != "" {
		req.Header.Set(HeaderTopic, r.Topic)
	}
	if r.Message != nil {
		req.Header.Set(HeaderContentType, r.Message.MediaType())
		req.Header.Set(HeaderContentEncoding, r.Message.ContentEncoding())
	}
	return req, nil
}

type claim struct {
	name  string
	value any
}

// RequestBuilder collects the parts of a Request. Defaults (TTL 24h, urgency normal,
// VAPID expiration 12h) are applied by Build, so a builder can be built repeatedly.
type RequestBuilder struct {
	subscription *Subscription
	message      *Message
	mediaType    string
	ttl          *int64
	urgency      Urgency
	topic        string

	expiresAfter *time.Duration
	expiresAt    *time.Time
	subject      string
	claims       []claim

	now func() time.Time
	err error
}

// NewRequestBuilder creates an empty builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{now: time.Now}
}

// Clone returns an independent copy, handy for sending one message to many subscriptions.
func (b *RequestBuilder) Clone() *RequestBuilder {
	c := *b
	c.claims = slices.Clone(b.claims)
	return &c
}

// WithClock replaces the clock used for the VAPID expiration.
func (b *RequestBuilder) WithClock(now func() time.Time) *RequestBuilder {
	b.now = now
	return b
}

// Subscription sets the target. It is mandatory.
func (b *RequestBuilder) Subscription(sub *Subscription) *RequestBuilder {
	if err := sub.Validate(); err != nil {
		return b.fail(err)
	}
	copied := *sub
	b.subscription = &copied
	return b
}

// Message sets a binary payload.
func (b *RequestBuilder) Message(data []byte) *RequestBuilder {
	m, err := NewMessage(data)
	if err != nil {
		return b.fail(err)
	}
	b.message = m
	return b
}

// Text sets a UTF-8 payload.
func (b *RequestBuilder) Text(text string) *RequestBuilder {
	m, err := NewTextMessage(text)
	if err != nil {
		return b.fail(err)
	}
	b.message = m
	return b
}

// MediaType sets the Content-Type of the encrypted body, DefaultMediaType by default.
func (b *RequestBuilder) MediaType(mediaType string) *RequestBuilder {
	if _, _, err := mime.ParseMediaType(mediaType); err != nil {
		return b.fail(errors.Precondition("invalid media type %q", mediaType).WithCause(err))
	}
	b.mediaType = mediaType
	return b
}

// TTL sets how long the push service retains an undelivered message, truncated to seconds.
func (b *RequestBuilder) TTL(d time.Duration) *RequestBuilder {
	seconds, err := TTLDuration(d)
	if err != nil {
		return b.fail(err)
	}
	b.ttl = &seconds
	return b
}

// TTLSeconds sets the TTL header value directly.
func (b *RequestBuilder) TTLSeconds(seconds int64) *RequestBuilder {
	seconds, err := TTLSeconds(seconds)
	if err != nil {
		return b.fail(err)
	}
	b.ttl = &seconds
	return b
}

// Urgency sets the Urgency header, UrgencyNormal by default.
func (b *RequestBuilder) Urgency(u Urgency) *RequestBuilder {
	u, err := ParseUrgency(string(u))
	if err != nil {
		return b.fail(err)
	}
	b.urgency = u
	return b
}

// Topic sets the Topic header so a pending message with the same topic is replaced.
func (b *RequestBuilder) Topic(topic string) *RequestBuilder {
	topic, err := EnsureTopic(topic)
	if err != nil {
		return b.fail(err)
	}
	b.topic = topic
	return b
}

// VAPIDExpiresAfter sets the token expiration relative to build time. The expiration
// may be set once, by VAPIDExpiresAfter or VAPIDExpiresAt.
func (b *RequestBuilder) VAPIDExpiresAfter(d time.Duration) *RequestBuilder {
	if d < 0 {
		return b.fail(errors.Precondition("expiration duration must not be negative, got %s", d))
	}
	if b.expirationSet() {
		return b.fail(errors.Precondition("the expiration must not be set more than once"))
	}
	b.expiresAfter = &d
	return b
}

// VAPIDExpiresAt sets an absolute token expiration.
func (b *RequestBuilder) VAPIDExpiresAt(t time.Time) *RequestBuilder {
	if b.expirationSet() {
		return b.fail(errors.Precondition("the expiration must not be set more than once"))
	}
	b.expiresAt = &t
	return b
}

func (b *RequestBuilder) expirationSet() bool {
	return b.expiresAfter != nil || b.expiresAt != nil
}

// VAPIDSubject sets the sub claim.
func (b *RequestBuilder) VAPIDSubject(subject string) *RequestBuilder {
	b.subject = subject
	return b
}

// VAPIDClaim adds a claim to the token, see vapid.ParamBuilder.Claim.
func (b *RequestBuilder) VAPIDClaim(name string, value any) *RequestBuilder {
	b.claims = append(b.claims, claim{name: name, value: value})
	return b
}

// Build signs the VAPID token and encrypts the message with a fresh engine.
func (b *RequestBuilder) Build(ctx context.Context, kp *vapid.KeyPair) (*Request, error) {
	return b.BuildWithEngine(ctx, kp, ece.NewEngine())
}

// BuildWithEngine is like Build but encrypts with engine, which must not be shared
// with concurrent callers.
func (b *RequestBuilder) BuildWithEngine(ctx context.Context, kp *vapid.KeyPair, engine *ece.Engine) (*Request, error) {
	switch {
	case b.err != nil:
		return nil, b.err
	case b.subscription == nil:
		return nil, errors.Precondition("the push subscription isn't specified")
	case kp == nil:
		return nil, errors.Precondition("VAPID key pair must not be nil")
	case engine == nil:
		return nil, errors.Precondition("encryption engine must not be nil")
	}

	param, err := b.param()
	if err != nil {
		return nil, err
	}
	authorization, err := kp.AuthorizationHeader(ctx, param)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:            uuid.NewString(),
		Endpoint:      b.subscription.Endpoint,
		Authorization: authorization,
		TTL:           int64(DefaultTTL / time.Second),
		Urgency:       UrgencyNormal,
		Topic:         b.topic,
	}
	if b.ttl != nil {
		req.TTL = *b.ttl
	}
	if b.urgency != "" {
		req.Urgency = b.urgency
	}

	if b.message != nil {
		keys, err := b.subscription.UserAgentKeys()
		if err != nil {
			return nil, err
		}
		record, err := engine.Encrypt(keys, b.message.data)
		if err != nil {
			return nil, err
		}
		req.Message = NewEncryptedMessage(record, WithMediaType(b.mediaType))
	}
	return req, nil
}

func (b *RequestBuilder) param() (*vapid.Param, error) {
	pb := vapid.NewParamBuilder().
		WithClock(b.now).
		ResourceURLString(b.subscription.Endpoint)
	if b.expiresAfter != nil {
		pb.ExpiresAfter(*b.expiresAfter)
	}
	if b.expiresAt != nil {
		pb.ExpiresAt(*b.expiresAt)
	}
	if b.subject != "" {
		pb.Subject(b.subject)
	}
	for _, c := range b.claims {
		pb.Claim(c.name, c.value)
	}
	return pb.BuildWithDefault()
}

func (b *RequestBuilder) fail(err error) *RequestBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}
