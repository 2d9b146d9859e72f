package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

func newTestProber(timeout time.Duration) *Prober {
	logger, _ := zap.NewDevelopment()
	return New(timeout, 4, "", logger)
}

func relayFor(t *testing.T, srv *httptest.Server, path string) relayurl.Address {
	t.Helper()
	a, err := relayurl.Parse("ws" + strings.TrimPrefix(srv.URL, "http") + path)
	require.NoError(t, err)
	return a
}

func jsonHandler(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}
}

func TestProbe_OK(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotUA = r.URL.Path, r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"status":"ok","connected_relays":7}`))
	}))
	defer srv.Close()

	a := relayFor(t, srv, "")
	res := newTestProber(2 * time.Second).Probe(context.Background(), []relayurl.Address{a})
	require.Equal(t, []Result{{URL: a.Key(), Status: StatusOK, Detail: "connected_relays=7"}}, res)
	require.Equal(t, "/health", gotPath)
	require.Equal(t, UserAgent, gotUA)
}

func TestProbe_OKWithTrailingNewline(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, "{\"status\":\"ok\"}\n"))
	defer srv.Close()

	res := newTestProber(2*time.Second).Probe(context.Background(), []relayurl.Address{relayFor(t, srv, "")})
	require.Equal(t, StatusOK, res[0].Status)
}

func TestProbe_OKWithoutPeerCount(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"ok"}`))
	defer srv.Close()

	res := newTestProber(2*time.Second).Probe(context.Background(), []relayurl.Address{relayFor(t, srv, "")})
	require.Equal(t, StatusOK, res[0].Status)
	require.Equal(t, "connected_relays=n/a", res[0].Detail)
}

func TestProbe_PathPreserved(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"ok","connected_relays":1}`))
	}))
	defer srv.Close()

	res := newTestProber(2*time.Second).Probe(context.Background(), []relayurl.Address{relayFor(t, srv, "/relay/")})
	require.Equal(t, StatusOK, res[0].Status)
	require.Equal(t, "/relay/health", gotPath)
}

func TestProbe_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		detail  string
	}{
		{"bad status", jsonHandler(http.StatusServiceUnavailable, `{"status":"ok"}`), "HTTP 503"},
		{"not json", jsonHandler(http.StatusOK, `<html>hi</html>`), "invalid health payload"},
		{"wrong status field", jsonHandler(http.StatusOK, `{"status":"degraded"}`), "invalid health payload"},
		{"array body", jsonHandler(http.StatusOK, `["ok"]`), "invalid health payload"},
		{"null body", jsonHandler(http.StatusOK, `null`), "invalid health payload"},
		{"trailing garbage", jsonHandler(http.StatusOK, `{"status":"ok"} garbage`), "invalid health payload"},
		{"two documents", jsonHandler(http.StatusOK, `{"status":"ok"}{"status":"ok"}`), "invalid health payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			res := newTestProber(2*time.Second).Probe(context.Background(), []relayurl.Address{relayFor(t, srv, "")})
			require.Equal(t, StatusFail, res[0].Status)
			require.Equal(t, tt.detail, res[0].Detail)
		})
	}
}

func TestProbe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	res := newTestProber(100*time.Millisecond).Probe(context.Background(), []relayurl.Address{relayFor(t, srv, "")})
	require.Equal(t, StatusFail, res[0].Status)
	require.Equal(t, "timeout after 100ms", res[0].Detail)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"ok"}`))
	a := relayFor(t, srv, "")
	srv.Close()

	res := newTestProber(2*time.Second).Probe(context.Background(), []relayurl.Address{a})
	require.Equal(t, StatusFail, res[0].Status)
	require.NotEmpty(t, res[0].Detail)
}

func TestProbe_PreservesInputOrder(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(80 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"ok","connected_relays":1}`))
	}))
	defer slow.Close()
	fast := httptest.NewServer(jsonHandler(http.StatusInternalServerError, `{}`))
	defer fast.Close()

	addrs := []relayurl.Address{relayFor(t, slow, ""), relayFor(t, fast, ""), relayFor(t, slow, "")}
	res := newTestProber(2*time.Second).Probe(context.Background(), addrs)
	require.Len(t, res, 3)
	require.Equal(t, StatusOK, res[0].Status)
	require.Equal(t, StatusFail, res[1].Status)
	require.Equal(t, StatusOK, res[2].Status)
	require.Equal(t, addrs[0].Key(), res[0].URL)
	require.Equal(t, addrs[1].Key(), res[1].URL)
}

func TestProbeEach_CallsOncePerAddress(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"ok"}`))
	defer srv.Close()

	a := relayFor(t, srv, "")
	seen := make(chan int, 5)
	newTestProber(2*time.Second).ProbeEach(context.Background(), []relayurl.Address{a, a, a, a, a}, func(i int, _ Result) {
		seen <- i
	})
	close(seen)

	got := map[int]bool{}
	for i := range seen {
		got[i] = true
	}
	require.Len(t, got, 5)
}

func TestProbe_Empty(t *testing.T) {
	require.Empty(t, newTestProber(time.Second).Probe(context.Background(), nil))
}
