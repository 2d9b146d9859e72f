package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	"github.com/shuliakovsky/relay-admin/pkg/metrics"
	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

const maxPayload = 64 << 10

const invalidPayload = "invalid health payload"

// New builds a prober. tor is a SOCKS5 address used only for .onion relays;
// leave it empty to dial them directly.
func New(timeout time.Duration, concurrency int, tor string, logger *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Prober{Timeout: timeout, Concurrency: concurrency, TorSocks5: tor, Logger: logger}
	p.client = p.httpClient(nil)
	if tor != "" {
		dialer, err := proxy.SOCKS5("tcp", tor, nil, proxy.Direct)
		if err != nil {
			logger.Warn("tor_dialer_error", zap.String("socks5", tor), zap.Error(err))
		} else {
			p.torClient = p.httpClient(dialer)
		}
	}
	return p
}

func (p *Prober) httpClient(dialer proxy.Dialer) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: p.Timeout,
	}
	if dialer != nil {
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}
	return &http.Client{Transport: transport}
}

func (p *Prober) clientFor(a relayurl.Address) *http.Client {
	if a.IsOnion() && p.torClient != nil {
		return p.torClient
	}
	return p.client
}

// Probe checks every address and returns one result per input, in input
// order. Duplicates are probed independently.
func (p *Prober) Probe(ctx context.Context, addrs []relayurl.Address) []Result {
	out := make([]Result, len(addrs))
	p.ProbeEach(ctx, addrs, func(i int, r Result) { out[i] = r })
	return out
}

// ProbeEach runs the probes concurrently and calls fn as each one completes.
// fn may be called from several goroutines at once.
func (p *Prober) ProbeEach(ctx context.Context, addrs []relayurl.Address, fn func(i int, r Result)) {
	var g errgroup.Group
	g.SetLimit(p.Concurrency)
	for i, a := range addrs {
		i, a := i, a
		g.Go(func() error {
			fn(i, p.probeOne(ctx, a))
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Prober) probeOne(ctx context.Context, a relayurl.Address) Result {
	start := time.Now()
	res := p.check(ctx, a)
	elapsed := time.Since(start)

	metrics.ProbeTotal.WithLabelValues(string(res.Status)).Inc()
	metrics.ProbeDuration.Observe(elapsed.Seconds())

	if res.Status == StatusOK {
		p.Logger.Debug("probe_ok",
			zap.String("url", res.URL),
			zap.String("detail", res.Detail),
			zap.Int64("latency_ms", elapsed.Milliseconds()),
		)
	} else {
		p.Logger.Warn("probe_failed",
			zap.String("url", res.URL),
			zap.String("detail", res.Detail),
			zap.Int64("latency_ms", elapsed.Milliseconds()),
		)
	}
	return res
}

func (p *Prober) check(ctx context.Context, a relayurl.Address) Result {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	fail := func(detail string) Result {
		return Result{URL: a.Key(), Status: StatusFail, Detail: detail}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.HealthURL(), nil)
	if err != nil {
		return fail(err.Error())
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.clientFor(a).Do(req)
	if err != nil {
		return fail(p.describe(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayload))
		return fail(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxPayload))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if isTimeout(err) {
			return fail(p.describe(err))
		}
		return fail(invalidPayload)
	}
	// exactly one JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if isTimeout(err) {
			return fail(p.describe(err))
		}
		return fail(invalidPayload)
	}
	if s, _ := body["status"].(string); s != "ok" {
		return fail(invalidPayload)
	}

	peers := "n/a"
	if v, ok := body["connected_relays"]; ok && v != nil {
		peers = fmt.Sprint(v)
	}
	return Result{URL: a.Key(), Status: StatusOK, Detail: "connected_relays=" + peers}
}

func (p *Prober) describe(err error) string {
	if isTimeout(err) {
		return fmt.Sprintf("timeout after %s", p.Timeout)
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
