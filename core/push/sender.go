package push

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/core/rate"
	"github.com/kochabx/webpush/core/vapid"
	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
)

const (
	DefaultWorkers = 8
	DefaultTimeout = 30 * time.Second

	maxResponseBody = 4 << 10
)

// Response is the push service's answer to a Request.
type Response struct {
	RequestID  string
	StatusCode int
	Status     ResponseStatus
	// Known is false for status codes push services do not document.
	Known bool
	// Location is the push message resource, set on success.
	Location   string
	RetryAfter time.Duration
	Body       []byte
}

// Result is the outcome of one Broadcast entry.
type Result struct {
	Index    int
	Request  *Request
	Response *Response
	Err      error
}

// Sender delivers requests to push services. It is safe for concurrent use.
type Sender struct {
	client  *http.Client
	workers int
	metrics *Metrics
	logger  *log.Logger
	limiter rate.Limiter
	engines sync.Pool

	poolFactory func(size int, opts ...ants.Option) (*ants.Pool, error)
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithHTTPClient replaces the HTTP client, e.g. to set a transport or proxy.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		s.client = client
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *Sender) {
		s.client = &http.Client{Timeout: d}
	}
}

// WithWorkers bounds the number of concurrent deliveries of Broadcast.
func WithWorkers(n int) SenderOption {
	return func(s *Sender) {
		s.workers = n
	}
}

// WithMetrics enables metrics, see NewMetrics.
func WithMetrics(m *Metrics) SenderOption {
	return func(s *Sender) {
		s.metrics = m
	}
}

// WithLogger sets the logger, log.G by default.
func WithLogger(l *log.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = l
	}
}

// WithLimiter limits requests per push service host. A limiter failure lets the
// request through.
func WithLimiter(l rate.Limiter) SenderOption {
	return func(s *Sender) {
		s.limiter = l
	}
}

// NewSender creates a Sender with a 30s HTTP timeout and 8 workers.
func NewSender(opts ...SenderOption) *Sender {
	s := &Sender{
		client:  &http.Client{Timeout: DefaultTimeout},
		workers: DefaultWorkers,
		metrics: NewMetrics(nil, ""),
		logger:  log.G,

		poolFactory: ants.NewPool,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	s.engines.New = func() any {
		return ece.NewEngine()
	}
	return s
}

// Send posts req. A response with any status code is not an error; inspect Response.Status.
func (s *Sender) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.Precondition("request must not be nil")
	}

	host := endpointHost(req.Endpoint)
	if err := s.allow(ctx, host); err != nil {
		return nil, err
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("request_id", req.ID).
		Str("host", host).
		Int64("ttl", req.TTL).
		Str("urgency", req.Urgency.String()).
		Int("body", bodyLen(req)).
		Msg("sending push request")

	start := time.Now()
	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		s.metrics.RecordDeliveryError("send")
		s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("push request failed")
		return nil, errors.Wrap(err, errors.UnknownCode, "failed to send push request").
			WithMetadata(map[string]string{"request_id": req.ID})
	}
	defer httpResp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	status, known := ParseResponseStatus(httpResp.StatusCode)
	s.metrics.RecordDelivery(status, time.Since(start).Seconds())

	resp := &Response{
		RequestID:  req.ID,
		StatusCode: httpResp.StatusCode,
		Status:     status,
		Known:      known,
		Location:   httpResp.Header.Get(HeaderLocation),
		RetryAfter: parseRetryAfter(httpResp.Header.Get(HeaderRetryAfter), time.Now()),
		Body:       body,
	}

	event := s.logger.Info()
	if !status.IsSuccess() {
		event = s.logger.Warn()
	}
	event.Str("request_id", req.ID).
		Int("status", resp.StatusCode).
		Bool("remove_subscription", status.ShouldRemoveSubscription()).
		Bool("retry_later", status.ShouldRetryLater()).
		Msg("push service responded")

	return resp, nil
}

func (s *Sender) allow(ctx context.Context, host string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.AllowN(ctx, host, time.Now(), 1)
	if err != nil {
		s.logger.Warn().Err(err).Str("host", host).Msg("rate limiter unavailable")
		return nil
	}
	if !ok {
		s.metrics.RecordDeliveryError("rate_limit")
		return errors.RateLimited("push rate limit exceeded for %s", host).
			WithMetadata(map[string]string{"host": host})
	}
	return nil
}

// Broadcast builds and sends every request on a bounded worker pool. Results keep the
// order of builders.
func (s *Sender) Broadcast(ctx context.Context, kp *vapid.KeyPair, builders []*RequestBuilder) []Result {
	results := make([]Result, len(builders))
	if len(builders) == 0 {
		return results
	}

	pool, err := s.newPool(len(builders))
	if err != nil {
		s.logger.Error().Err(err).Int("requests", len(builders)).Msg("failed to create worker pool")
		for i := range results {
			results[i] = Result{Index: i, Err: errors.Internal("failed to create worker pool").WithCause(err)}
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, b := range builders {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.deliver(ctx, kp, i, b)
		})
		if err != nil {
			wg.Done()
			results[i] = Result{Index: i, Err: errors.Internal("failed to submit push task").WithCause(err)}
		}
	}
	wg.Wait()

	return results
}

// newPool sizes the pool to the batch, falling back to a pool without preallocation.
func (s *Sender) newPool(n int) (*ants.Pool, error) {
	size := min(s.workers, n)
	pool, err := s.poolFactory(size, ants.WithPreAlloc(true))
	if err == nil {
		return pool, nil
	}
	s.logger.Warn().Err(err).Int("size", size).Msg("failed to create preallocated worker pool, retrying")
	return s.poolFactory(size)
}

func (s *Sender) deliver(ctx context.Context, kp *vapid.KeyPair, i int, b *RequestBuilder) Result {
	result := Result{Index: i}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}
	if b == nil {
		result.Err = errors.Precondition("request builder %d is nil", i)
		return result
	}

	engine := s.engines.Get().(*ece.Engine)
	req, err := b.BuildWithEngine(ctx, kp, engine)
	s.engines.Put(engine)
	if err != nil {
		s.metrics.RecordDeliveryError("build")
		result.Err = err
		return result
	}
	if req.Message != nil {
		s.metrics.RecordEncrypted(req.Message.Len())
	}

	result.Request = req
	result.Response, result.Err = s.Send(ctx, req)
	return result
}

// parseRetryAfter accepts delay-seconds or an HTTP-date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

func bodyLen(req *Request) int {
	if req.Message == nil {
		return 0
	}
	return req.Message.Len()
}
