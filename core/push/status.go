package push

import (
	"net/http"
	"strconv"
)

// ResponseStatus classifies the status code returned by a push service.
type ResponseStatus int

const (
	StatusCreated         ResponseStatus = http.StatusCreated
	StatusBadRequest      ResponseStatus = http.StatusBadRequest
	StatusUnauthorized    ResponseStatus = http.StatusUnauthorized
	StatusForbidden       ResponseStatus = http.StatusForbidden
	StatusNotFound        ResponseStatus = http.StatusNotFound
	StatusGone            ResponseStatus = http.StatusGone
	StatusPayloadTooLarge ResponseStatus = http.StatusRequestEntityTooLarge
	StatusTooManyRequests ResponseStatus = http.StatusTooManyRequests
)

var knownStatuses = map[ResponseStatus]string{
	StatusCreated:         "created",
	StatusBadRequest:      "bad_request",
	StatusUnauthorized:    "unauthorized",
	StatusForbidden:       "forbidden",
	StatusNotFound:        "not_found",
	StatusGone:            "gone",
	StatusPayloadTooLarge: "payload_too_large",
	StatusTooManyRequests: "too_many_requests",
}

// ParseResponseStatus returns the status for code and whether it is one push services document.
func ParseResponseStatus(code int) (ResponseStatus, bool) {
	s := ResponseStatus(code)
	_, ok := knownStatuses[s]
	return s, ok
}

// IsSuccess reports 201 Created.
func (s ResponseStatus) IsSuccess() bool {
	return s == StatusCreated
}

// ShouldRemoveSubscription reports 404 and 410: the subscription has expired or been revoked.
func (s ResponseStatus) ShouldRemoveSubscription() bool {
	return s == StatusNotFound || s == StatusGone
}

// ShouldRetryLater reports 429.
func (s ResponseStatus) ShouldRetryLater() bool {
	return s == StatusTooManyRequests
}

// String returns a metric friendly name, or the numeric code for undocumented statuses.
func (s ResponseStatus) String() string {
	if name, ok := knownStatuses[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}
