package push

import (
	"encoding/json"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/errors"
)

// Subscription is the PushSubscription a browser hands to the application server,
// in its JSON form.
type Subscription struct {
	Endpoint       string `json:"endpoint" validate:"required,url"`
	ExpirationTime *int64 `json:"expirationTime,omitempty"`
	Keys           Keys   `json:"keys"`
}

// Keys holds the user agent's encryption keys, both base64url encoded.
type Keys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// ParseSubscription decodes and validates the JSON produced by PushSubscription.toJSON().
func ParseSubscription(data []byte) (*Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, errors.Precondition("malformed subscription JSON").WithCause(err)
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Validate checks that the endpoint, p256dh and auth are present.
func (s *Subscription) Validate() error {
	if s == nil {
		return errors.Precondition("subscription must not be nil")
	}
	return validator.ToError(validator.Validate.Struct(s))
}

// UserAgentKeys decodes the subscription keys. The public key is validated.
func (s *Subscription) UserAgentKeys() (*ece.UserAgentKeys, error) {
	return ece.UserAgentKeysFromBase64(s.Keys.P256dh, s.Keys.Auth)
}
