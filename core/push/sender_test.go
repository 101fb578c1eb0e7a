package push

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/core/rate"
	"github.com/kochabx/webpush/core/vapid"
	"github.com/kochabx/webpush/errors"
)

// pushService answers with the status code given as the last path segment.
type pushService struct {
	mu     sync.Mutex
	bodies map[string][]byte
	header map[string]http.Header
}

func newPushService(t *testing.T) (*pushService, *httptest.Server) {
	t.Helper()
	ps := &pushService{bodies: map[string][]byte{}, header: map[string]http.Header{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ps.mu.Lock()
		ps.bodies[r.URL.Path] = body
		ps.header[r.URL.Path] = r.Header.Clone()
		ps.mu.Unlock()

		segments := strings.Split(r.URL.Path, "/")
		code, err := strconv.Atoi(segments[len(segments)-1])
		if err != nil {
			code = http.StatusCreated
		}
		switch code {
		case http.StatusCreated:
			w.Header().Set("Location", "/messages"+r.URL.Path)
		case http.StatusTooManyRequests:
			w.Header().Set("Retry-After", "120")
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte("status " + strconv.Itoa(code)))
	}))
	t.Cleanup(srv.Close)
	return ps, srv
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	ps, srv := newPushService(t)
	kp := newKeyPair(t)
	ua := newUserAgent(t, srv.URL+"/sub/201")

	req, err := NewRequestBuilder().Subscription(ua.sub).Text("ping").Topic("t").Build(ctx, kp)
	require.NoError(t, err)

	resp, err := NewSender().Send(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req.ID, resp.RequestID)
	assert.Equal(t, 201, resp.StatusCode)
	assert.True(t, resp.Known)
	assert.True(t, resp.Status.IsSuccess())
	assert.Equal(t, "/messages/sub/201", resp.Location)
	assert.Equal(t, "status 201", string(resp.Body))

	header := ps.header["/sub/201"]
	assert.Equal(t, "aes128gcm", header.Get("Content-Encoding"))
	assert.Equal(t, "t", header.Get("Topic"))

	_, pub, err := vapid.VerifyAuthorization(header.Get("Authorization"))
	require.NoError(t, err)
	assert.True(t, pub.Equal(kp.PublicKey()))

	keys, err := ua.sub.UserAgentKeys()
	require.NoError(t, err)
	plaintext, err := ece.NewEngine().Decrypt(keys, ps.bodies["/sub/201"], ua.priv)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(plaintext))
}

func TestSendClassifiesResponses(t *testing.T) {
	ctx := context.Background()
	_, srv := newPushService(t)
	kp := newKeyPair(t)
	sender := NewSender(WithTimeout(5 * time.Second))

	tests := []struct {
		code       int
		remove     bool
		retry      bool
		retryAfter time.Duration
	}{
		{410, true, false, 0},
		{404, true, false, 0},
		{429, false, true, 2 * time.Minute},
		{413, false, false, 0},
		{500, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.code), func(t *testing.T) {
			ua := newUserAgent(t, srv.URL+"/sub/"+strconv.Itoa(tt.code))
			req, err := NewRequestBuilder().Subscription(ua.sub).Build(ctx, kp)
			require.NoError(t, err)

			resp, err := sender.Send(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.False(t, resp.Status.IsSuccess())
			assert.Equal(t, tt.remove, resp.Status.ShouldRemoveSubscription())
			assert.Equal(t, tt.retry, resp.Status.ShouldRetryLater())
			assert.Equal(t, tt.retryAfter, resp.RetryAfter)
		})
	}
}

func TestSendTransportError(t *testing.T) {
	ctx := context.Background()
	_, srv := newPushService(t)
	kp := newKeyPair(t)
	ua := newUserAgent(t, srv.URL+"/sub/201")

	req, err := NewRequestBuilder().Subscription(ua.sub).Build(ctx, kp)
	require.NoError(t, err)
	srv.Close()

	_, err = NewSender().Send(ctx, req)
	require.Error(t, err)
	assert.Equal(t, req.ID, errors.FromError(err).GetMetadata()["request_id"])

	_, err = NewSender().Send(ctx, nil)
	assert.ErrorIs(t, err, errors.ErrPrecondition)
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	ps, srv := newPushService(t)
	kp := newKeyPair(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "webpush")
	sender := NewSender(WithWorkers(3), WithMetrics(metrics))

	codes := []int{201, 201, 410, 201, 429, 201, 201}
	agents := make([]*userAgent, len(codes))
	builders := make([]*RequestBuilder, 0, len(codes)+1)
	base := NewRequestBuilder().Text("broadcast")
	for i, code := range codes {
		agents[i] = newUserAgent(t, srv.URL+"/sub"+strconv.Itoa(i)+"/"+strconv.Itoa(code))
		builders = append(builders, base.Clone().Subscription(agents[i].sub))
	}
	// no subscription
	builders = append(builders, base.Clone())

	results := sender.Broadcast(ctx, kp, builders)
	require.Len(t, results, len(codes)+1)

	for i, code := range codes {
		r := results[i]
		assert.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
		assert.Equal(t, code, r.Response.StatusCode)

		keys, err := agents[i].sub.UserAgentKeys()
		require.NoError(t, err)
		ps.mu.Lock()
		body := ps.bodies["/sub"+strconv.Itoa(i)+"/"+strconv.Itoa(code)]
		ps.mu.Unlock()
		plaintext, err := ece.NewEngine().Decrypt(keys, body, agents[i].priv)
		require.NoError(t, err)
		assert.Equal(t, "broadcast", string(plaintext))
	}

	last := results[len(codes)]
	assert.ErrorIs(t, last.Err, errors.ErrPrecondition)
	assert.Nil(t, last.Response)

	assert.Equal(t, float64(len(codes)), testutil.ToFloat64(metrics.MessagesEncrypted))
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.Deliveries.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Deliveries.WithLabelValues("gone")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Deliveries.WithLabelValues("too_many_requests")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DeliveryErrors.WithLabelValues("build")))
}

func TestBroadcastPoolFallback(t *testing.T) {
	ctx := context.Background()
	_, srv := newPushService(t)
	kp := newKeyPair(t)
	builders := []*RequestBuilder{
		NewRequestBuilder().Subscription(newUserAgent(t, srv.URL+"/pool/0/201").sub),
		NewRequestBuilder().Subscription(newUserAgent(t, srv.URL+"/pool/1/201").sub),
	}

	t.Run("preallocation fails", func(t *testing.T) {
		var calls int
		sender := NewSender()
		sender.poolFactory = func(size int, opts ...ants.Option) (*ants.Pool, error) {
			calls++
			if len(opts) > 0 {
				return nil, ants.ErrInvalidPreAllocSize
			}
			return ants.NewPool(size)
		}

		for _, r := range sender.Broadcast(ctx, kp, builders) {
			require.NoError(t, r.Err)
			assert.Equal(t, 201, r.Response.StatusCode)
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("no pool", func(t *testing.T) {
		sender := NewSender()
		sender.poolFactory = func(int, ...ants.Option) (*ants.Pool, error) {
			return nil, ants.ErrInvalidPoolExpiry
		}

		results := sender.Broadcast(ctx, kp, builders)
		require.Len(t, results, 2)
		for i, r := range results {
			assert.Equal(t, i, r.Index)
			assert.Nil(t, r.Response)
			assert.ErrorIs(t, r.Err, ants.ErrInvalidPoolExpiry)
		}
	})
}

func TestBroadcastCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ua := newUserAgent(t, "https://push.example.com/1")
	results := NewSender().Broadcast(ctx, newKeyPair(t), []*RequestBuilder{
		NewRequestBuilder().Subscription(ua.sub),
		nil,
	})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}

	assert.Empty(t, NewSender().Broadcast(context.Background(), nil, nil))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"-5", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.value, now), tt.value)
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(nil, "")
	m.RecordEncrypted(10)
	m.RecordDelivery(StatusCreated, 0.1)
	m.RecordDeliveryError("send")

	var nilMetrics *Metrics
	nilMetrics.RecordEncrypted(10)
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) AllowN(_ context.Context, key string, _ time.Time, _ int) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

func TestSendRateLimited(t *testing.T) {
	ctx := context.Background()
	ps, srv := newPushService(t)
	kp := newKeyPair(t)
	ua := newUserAgent(t, srv.URL+"/limited/201")

	req, err := NewRequestBuilder().Subscription(ua.sub).Build(ctx, kp)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	lim := &stubLimiter{}
	_, err = NewSender(WithLimiter(lim), WithMetrics(m)).Send(ctx, req)
	require.ErrorIs(t, err, errors.ErrRateLimited)
	assert.Equal(t, []string{strings.TrimPrefix(srv.URL, "http://")}, lim.keys)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryErrors.WithLabelValues("rate_limit")))
	assert.Empty(t, ps.header)

	// limiter failures let the request through
	resp, err := NewSender(WithLimiter(&stubLimiter{err: io.ErrUnexpectedEOF})).Send(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestBroadcastSlidingWindow(t *testing.T) {
	ctx := context.Background()
	_, srv := newPushService(t)
	kp := newKeyPair(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	lim, err := rate.NewSlidingWindowLimiter(client, time.Minute, 2)
	require.NoError(t, err)

	builders := make([]*RequestBuilder, 4)
	for i := range builders {
		builders[i] = NewRequestBuilder().Subscription(newUserAgent(t, srv.URL+"/w/"+strconv.Itoa(i)+"/201").sub)
	}

	results := NewSender(WithLimiter(lim), WithWorkers(1)).Broadcast(ctx, kp, builders)
	var sent, limited int
	for _, r := range results {
		switch {
		case r.Err == nil:
			sent++
		case errors.Is(r.Err, errors.ErrRateLimited):
			limited++
		}
	}
	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, limited)
}
