package vapid

import (
	"math"
	"net"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kochabx/webpush/errors"
)

// Param holds the claims of a single token. It is immutable once built.
type Param struct {
	origin    string
	expiresAt time.Time
	subject   string
	claims    []claim
}

type claim struct {
	name  string
	value any
}

// Origin returns the aud claim, scheme://host[:port].
func (p *Param) Origin() string {
	return p.origin
}

// ExpiresAt returns the exp claim.
func (p *Param) ExpiresAt() time.Time {
	return p.expiresAt
}

// ExpiresAtUnix returns the exp claim in seconds since the epoch.
func (p *Param) ExpiresAtUnix() int64 {
	return p.expiresAt.Unix()
}

// Subject returns the sub claim, if set.
func (p *Param) Subject() (string, bool) {
	return p.subject, p.subject != ""
}

// Claim returns an additional claim by name.
func (p *Param) Claim(name string) (any, bool) {
	for _, c := range p.claims {
		if c.name == name {
			return c.value, true
		}
	}
	return nil, false
}

// ClaimNames returns the names of the additional claims in insertion order.
func (p *Param) ClaimNames() []string {
	names := make([]string, len(p.claims))
	for i, c := range p.claims {
		names[i] = c.name
	}
	return names
}

// ClaimAs returns an additional claim when it holds a value of type T.
func ClaimAs[T any](p *Param, name string) (T, bool) {
	var zero T
	v, ok := p.Claim(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ParamBuilder assembles a Param. The resource URL and the expiration may each be set once;
// the first misuse is reported by Build.
type ParamBuilder struct {
	resourceURL *url.URL
	expiresAt   *time.Time
	subject     string
	claims      []claim
	now         func() time.Time
	err         error
}

// NewParamBuilder creates an empty builder.
func NewParamBuilder() *ParamBuilder {
	return &ParamBuilder{now: time.Now}
}

// WithClock replaces the clock used by ExpiresAfter and BuildWithDefault.
func (b *ParamBuilder) WithClock(now func() time.Time) *ParamBuilder {
	b.now = now
	return b
}

// ResourceURLString sets the push resource URL, typically the subscription endpoint.
func (b *ParamBuilder) ResourceURLString(rawURL string) *ParamBuilder {
	u, err := url.Parse(rawURL)
	if err != nil {
		return b.fail(errors.Precondition("invalid resource URL %q", rawURL).WithCause(err))
	}
	return b.ResourceURL(u)
}

// ResourceURL sets the push resource URL.
func (b *ParamBuilder) ResourceURL(u *url.URL) *ParamBuilder {
	switch {
	case u == nil:
		return b.fail(errors.Precondition("resource URL must not be nil"))
	case b.resourceURL != nil:
		return b.fail(errors.Precondition("the resource URL must not be set more than once"))
	case u.Scheme == "" || u.Host == "":
		return b.fail(errors.Precondition("resource URL %q must be absolute", u.String()))
	}
	b.resourceURL = u
	return b
}

// ExpiresAfter sets the expiration relative to now.
func (b *ParamBuilder) ExpiresAfter(d time.Duration) *ParamBuilder {
	if d < 0 {
		return b.fail(errors.Precondition("expiration duration must not be negative, got %s", d))
	}
	return b.ExpiresAt(b.now().Add(d))
}

// ExpiresAt sets an absolute expiration.
func (b *ParamBuilder) ExpiresAt(t time.Time) *ParamBuilder {
	if b.expiresAt != nil {
		return b.fail(errors.Precondition("the expiration must not be set more than once"))
	}
	b.expiresAt = &t
	return b
}

// Subject sets the sub claim, a mailto: or https: contact URI.
func (b *ParamBuilder) Subject(subject string) *ParamBuilder {
	b.subject = subject
	return b
}

// Claim adds an additional claim. value must be a string, bool, int, int32, int64, float64
// or time.Time. Setting a name again replaces the value in place.
func (b *ParamBuilder) Claim(name string, value any) *ParamBuilder {
	if name == "" {
		return b.fail(errors.Precondition("claim name must not be empty"))
	}
	if slices.Contains(reservedClaims, name) {
		return b.fail(errors.Precondition("claim %q is reserved", name))
	}

	switch v := value.(type) {
	case string, bool, int32, int64:
	case int:
		value = int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return b.fail(errors.Precondition("claim %q must be a finite number", name))
		}
	case time.Time:
	default:
		return b.fail(errors.Precondition("claim %q has unsupported type %T", name, value))
	}

	for i := range b.claims {
		if b.claims[i].name == name {
			b.claims[i].value = value
			return b
		}
	}
	b.claims = append(b.claims, claim{name: name, value: value})
	return b
}

// Build returns the Param. The resource URL and the expiration are mandatory.
func (b *ParamBuilder) Build() (*Param, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.resourceURL == nil {
		return nil, errors.Precondition("the resource URL must be set")
	}
	if b.expiresAt == nil {
		return nil, errors.Precondition("the expiration must be set")
	}

	return &Param{
		origin:    Origin(b.resourceURL),
		expiresAt: *b.expiresAt,
		subject:   b.subject,
		claims:    slices.Clone(b.claims),
	}, nil
}

// BuildWithDefault is like Build, defaulting the expiration to DefaultExpiration from now.
func (b *ParamBuilder) BuildWithDefault() (*Param, error) {
	if b.err == nil && b.expiresAt == nil {
		b.ExpiresAfter(DefaultExpiration)
	}
	return b.Build()
}

func (b *ParamBuilder) fail(err error) *ParamBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

var reservedClaims = []string{"aud", "exp", "sub"}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// Origin serializes the origin of u (RFC 6454): scheme://host, plus :port when the port is
// not the default of the scheme.
func Origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	port := u.Port()
	if port == "" || defaultPorts[scheme] == port {
		return scheme + "://" + host
	}
	return scheme + "://" + net.JoinHostPort(strings.Trim(host, "[]"), port)
}
