// Package push prepares and delivers Web Push requests.
//
// A RequestBuilder turns a browser PushSubscription, an optional message and the delivery
// headers into a Request signed with a VAPID key pair. A Sender posts requests to the push
// service and classifies the response:
//
//	kp, _ := vapid.NewKeyPairFromPrivateKey(priv)
//	req, err := push.NewRequestBuilder().
//		Subscription(sub).
//		Text("hello").
//		Urgency(push.UrgencyHigh).
//		Build(ctx, kp)
//	resp, err := push.NewSender().Send(ctx, req)
//	if resp.Status.ShouldRemoveSubscription() { ... }
package push

import "time"

// Header names of a push request.
const (
	HeaderAuthorization   = "Authorization"
	HeaderTTL             = "TTL"
	HeaderUrgency         = "Urgency"
	HeaderTopic           = "Topic"
	HeaderContentEncoding = "Content-Encoding"
	HeaderContentType     = "Content-Type"
	HeaderRetryAfter      = "Retry-After"
	HeaderLocation        = "Location"
)

const (
	// DefaultTTL is applied when the builder was given no TTL.
	DefaultTTL = 24 * time.Hour
	// DefaultMediaType is the Content-Type of an encrypted body.
	DefaultMediaType = "application/octet-stream"
)
