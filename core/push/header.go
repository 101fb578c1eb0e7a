package push

import (
	"time"

	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/errors"
)

// TTLSeconds validates a TTL header value.
func TTLSeconds(seconds int64) (int64, error) {
	if seconds < 0 {
		return 0, errors.Precondition("TTL should be a non-negative number")
	}
	return seconds, nil
}

// TTLMinutes and the helpers below convert to seconds; negative values fail.
func TTLMinutes(minutes int64) (int64, error) {
	return TTLSeconds(minutes * 60)
}

func TTLHours(hours int64) (int64, error) {
	return TTLSeconds(hours * 3600)
}

func TTLDays(days int64) (int64, error) {
	return TTLSeconds(days * 86400)
}

// TTLDuration converts d to whole seconds.
func TTLDuration(d time.Duration) (int64, error) {
	return TTLSeconds(int64(d / time.Second))
}

// Urgency is the value of the Urgency header.
type Urgency string

const (
	UrgencyVeryLow Urgency = "very-low"
	UrgencyLow     Urgency = "low"
	UrgencyNormal  Urgency = "normal"
	UrgencyHigh    Urgency = "high"
)

// ParseUrgency accepts one of the four urgency values.
func ParseUrgency(s string) (Urgency, error) {
	if !validator.IsUrgency(s) {
		return "", errors.Precondition("urgency must be one of very-low, low, normal or high, got %q", s)
	}
	return Urgency(s), nil
}

func (u Urgency) String() string {
	return string(u)
}

// EnsureTopic returns topic if it has at most 32 characters of the URL-safe base64 alphabet.
func EnsureTopic(topic string) (string, error) {
	if !validator.IsTopic(topic) {
		return "", errors.Precondition("the Topic header field must be no more than %d characters from the URL and filename-safe base64 alphabet", validator.MaxTopicLength)
	}
	return topic, nil
}
