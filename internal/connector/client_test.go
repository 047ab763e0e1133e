package connector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modxel/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *store.Store, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	s := store.NewMemory()
	s.Set(store.KeyServerAddress, server.URL)
	return New(s, DefaultOptions(), logging.NewNop(), monitoring.NewMetrics()), s, &hits
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestRequestFormAndHeaders(t *testing.T) {
	var (
		path   string
		form   url.Values
		cookie string
		auth   string
		ctype  string
	)
	client, s, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		path = r.URL.Path
		form = r.PostForm
		cookie = r.Header.Get("Cookie")
		auth = r.Header.Get("modAuth")
		ctype = r.Header.Get("Content-Type")
		writeJSON(w, `{"success":true,"object":{"id":42}}`)
	})
	s.Set(store.KeyServerSession, "PHPSESSID=abc")
	s.Set(store.KeyServerToken, "T1")

	env, err := client.Call(context.Background(), "element/chunk/update", url.Values{
		"id":      {"42"},
		"name":    {"foo"},
		"snippet": {"bar"},
	})
	require.NoError(t, err)
	require.NotNil(t, env)

	assert.Equal(t, "/connectors/index.php", path)
	assert.Equal(t, "element/chunk/update", form.Get("action"))
	assert.Equal(t, "T1", form.Get("HTTP_MODAUTH"))
	assert.Equal(t, "42", form.Get("id"))
	assert.Equal(t, "foo", form.Get("name"))
	assert.Equal(t, "bar", form.Get("snippet"))
	assert.Equal(t, "PHPSESSID=abc", cookie)
	assert.Equal(t, "T1", auth)
	assert.Contains(t, ctype, "application/x-www-form-urlencoded")

	el, err := env.Element()
	require.NoError(t, err)
	assert.Equal(t, "42", el.ID.String())
}

func TestRequestWithoutSessionOmitsHeaders(t *testing.T) {
	var (
		path   string
		cookie string
		auth   string
	)
	client, s, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		cookie = r.Header.Get("Cookie")
		auth = r.Header.Get("modAuth")
		writeJSON(w, `{"success":true,"object":{"token":"T1"}}`)
	})
	address := s.String(store.KeyServerAddress)
	s.Erase(store.KeyServerAddress)

	env, err := client.Login(context.Background(), address, url.Values{"username": {"u"}})
	require.NoError(t, err)

	assert.Equal(t, "/connectors/", path)
	assert.Empty(t, cookie)
	assert.Empty(t, auth)
	assert.Equal(t, "T1", env.Token())
	assert.Empty(t, s.String(store.KeyServerAddress))

	_, err = client.Login(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoServerConfigured)
}

func TestNoServerConfigured(t *testing.T) {
	client := New(store.NewMemory(), DefaultOptions(), nil, nil)

	_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
	assert.ErrorIs(t, err, ErrNoServerConfigured)
}

func TestSessionCookieRotation(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "success envelope",
			status: http.StatusOK,
			body:   `{"success":true}`,
			wantErr: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "failed envelope",
			status: http.StatusOK,
			body:   `{"success":false,"message":"nope","object":[]}`,
			wantErr: func(t *testing.T, err error) {
				_, ok := IsAPIError(err)
				assert.True(t, ok)
			},
		},
		{
			name:   "http unauthorized",
			status: http.StatusUnauthorized,
			body:   ``,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, s, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "rotated", Path: "/"})
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			s.Set(store.KeyServerSession, "PHPSESSID=old")

			_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
			tt.wantErr(t, err)
			assert.Equal(t, "PHPSESSID=rotated", s.String(store.KeyServerSession))
		})
	}
}

func TestUnauthorizedWithoutCookieKeepsSession(t *testing.T) {
	client, s, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	s.Set(store.KeyServerSession, "PHPSESSID=old")

	_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "PHPSESSID=old", s.String(store.KeyServerSession))
}

func TestOtherCookiesIgnored(t *testing.T) {
	client, s, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "x"})
		writeJSON(w, `{"success":true}`)
	})
	s.Set(store.KeyServerSession, "PHPSESSID=old")

	_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
	require.NoError(t, err)
	assert.Equal(t, "PHPSESSID=old", s.String(store.KeyServerSession))
}

func TestRotationPersistsStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "fresh"})
		writeJSON(w, `{"success":true}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "Modx.settings")
	s, err := store.Open(path)
	require.NoError(t, err)
	s.Set(store.KeyServerAddress, server.URL)

	metrics := monitoring.NewMetrics()
	client := New(s, DefaultOptions(), logging.NewNop(), metrics)
	_, err = client.Call(context.Background(), "element/getlistbyclass", nil)
	require.NoError(t, err)

	reopened, err := store.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "PHPSESSID=fresh", reopened.String(store.KeyServerSession))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionRotated))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("element/getlistbyclass", "ok")))
}

func TestEnvelopeUnauthorizedCode(t *testing.T) {
	for _, body := range []string{
		`{"success":false,"message":"","object":{"code":401}}`,
		`{"success":false,"message":"","object":{"code":"401"}}`,
	} {
		client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, body)
		})

		_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
		assert.ErrorIs(t, err, ErrUnauthorized, body)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":false,"message":"Form errors","object":null,"data":[{"id":"name","msg":"Name already exists"}]}`)
	})

	_, err := client.Call(context.Background(), "element/chunk/create", nil)
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Name already exists", apiErr.Message)
	assert.Equal(t, "element/chunk/create", apiErr.Action)
}

func TestHTTPErrorSentOnce(t *testing.T) {
	client, _, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Call(context.Background(), "element/getlistbyclass", nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestMalformedBody(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `<html>fatal error</html>`)
	})

	_, err := client.Call(context.Background(), "element/getlistbyclass", nil)
	require.Error(t, err)
	_, ok := IsAPIError(err)
	assert.False(t, ok)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func newDroppingServer(t *testing.T) (string, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		conn, _, err := w.(http.Hijacker).Hijack()
		if assert.NoError(t, err) {
			_ = conn.Close()
		}
	}))
	t.Cleanup(server.Close)
	return server.URL, &hits
}

func TestTransportFailureEverySend(t *testing.T) {
	addr, hits := newDroppingServer(t)
	s := store.NewMemory()
	s.Set(store.KeyServerAddress, addr)
	client := New(s, DefaultOptions(), logging.NewNop(), nil)
	require.Nil(t, client.Breaker())

	for i := 1; i <= 7; i++ {
		_, err := client.Call(context.Background(), "element/chunk/update", nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
		assert.Equal(t, int32(i), atomic.LoadInt32(hits))
	}
}

func TestTransportFailureOpensConfiguredBreaker(t *testing.T) {
	addr, hits := newDroppingServer(t)
	s := store.NewMemory()
	s.Set(store.KeyServerAddress, addr)
	metrics := monitoring.NewMetrics()
	opts := DefaultOptions()
	opts.BreakerFailures = 2
	opts.BreakerCooldown = time.Hour
	client := New(s, opts, logging.NewNop(), metrics)

	for i := 0; i < 2; i++ {
		_, err := client.Call(context.Background(), "element/chunk/update", nil)
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, client.Breaker().State())
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(metrics.BreakerState.WithLabelValues("connector")))

	_, err := client.Call(context.Background(), "element/chunk/update", nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("element/chunk/update", outcomeCircuitOpen)))
}

func TestServerRepliesKeepBreakerClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	s := store.NewMemory()
	s.Set(store.KeyServerAddress, server.URL)
	opts := DefaultOptions()
	opts.BreakerFailures = 1
	client := New(s, opts, logging.NewNop(), nil)

	for i := 0; i < 3; i++ {
		_, err := client.Call(context.Background(), "element/chunk/update", nil)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Equal(t, resilience.StateClosed, client.Breaker().State())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://cms.test", "/connectors/index.php", "http://cms.test/connectors/index.php"},
		{"http://cms.test/", "/connectors/", "http://cms.test/connectors/"},
		{"https://cms.test/manager/", "/connectors/index.php", "https://cms.test/connectors/index.php"},
	}

	for _, tt := range tests {
		got, err := resolve(tt.base, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := resolve("cms.test", "/connectors/")
	assert.Error(t, err)
}

func TestRequestSpans(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":false,"message":"Locked"}`)
	})
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := tracing.New(&logging.Logger{Logger: zap.New(core)})
	client.WithTracer(tracer)

	root, ctx := tracer.StartSpan(context.Background(), "workflow update")
	_, err := client.Call(ctx, "element/chunk/update", nil)
	require.Error(t, err)

	spans := logs.FilterMessage("span failed").All()
	require.Len(t, spans, 1)
	fields := spans[0].ContextMap()
	assert.Equal(t, "element/chunk/update", fields["operation"])
	assert.Equal(t, "200", fields["status"])
	assert.Equal(t, string(root.TraceID), fields["trace_id"])
	assert.Equal(t, root.SpanID.String(), fields["parent_id"])
}
