package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/health"
	"github.com/shuliakovsky/relay-admin/pkg/metrics"
	"github.com/shuliakovsky/relay-admin/pkg/mirror"
	"github.com/shuliakovsky/relay-admin/pkg/publish"
	"github.com/shuliakovsky/relay-admin/pkg/registry"
	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

// TokenHeader carries the shared secret on every /api/* request.
const TokenHeader = "x-admin-token"

const maxBody = 1 << 20

type Admin struct {
	Store     *registry.Store
	Prober    *health.Prober
	Mirror    *mirror.Client
	Publisher publish.Publisher
	Token     string
	Logger    *zap.Logger
}

func NewAdmin(store *registry.Store, prober *health.Prober, m *mirror.Client, pub publish.Publisher, token string, logger *zap.Logger) *Admin {
	if pub == nil {
		pub = publish.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{Store: store, Prober: prober, Mirror: m, Publisher: pub, Token: token, Logger: logger}
}

type urlsRequest struct {
	URLs []string `json:"urls"`
}

type relaysResponse struct {
	Relays      []string `json:"relays"`
	Source      string   `json:"source"`
	RemoteError *string  `json:"remote_error"`
}

type checkResponse struct {
	Results []health.Result `json:"results"`
}

type saveResponse struct {
	Relays []string       `json:"relays"`
	Git    publish.Result `json:"git"`
}

// auth writes a bare 401 when the token is configured and does not match.
func (a *Admin) auth(w http.ResponseWriter, r *http.Request) bool {
	if a.authorized(r.Header.Get(TokenHeader)) {
		return true
	}
	w.WriteHeader(http.StatusUnauthorized)
	return false
}

func (a *Admin) authorized(token string) bool {
	if a.Token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) == 1
}

// GET /api/relays
func (a *Admin) ListRelays(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) || !allowMethod(w, r, http.MethodGet) {
		return
	}

	var remoteErr *string
	if a.Mirror.Enabled() {
		relays, err := a.Mirror.Fetch(r.Context())
		if err == nil {
			writeJSON(w, http.StatusOK, relaysResponse{Relays: nonNil(relays), Source: "github"})
			return
		}
		msg := err.Error()
		remoteErr = &msg
		a.Logger.Warn("mirror_fetch_failed", zap.Error(err))
	}

	doc, err := a.Store.Load()
	if err != nil {
		a.Logger.Error("registry_load_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, relaysResponse{Relays: nonNil(doc.Relays), Source: "local", RemoteError: remoteErr})
}

// POST /api/check
func (a *Admin) Check(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) || !allowMethod(w, r, http.MethodPost) {
		return
	}
	urls, err := decodeURLs(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	addrs, err := relayurl.ParseAll(urls)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := a.Prober.Probe(r.Context(), addrs)
	a.Logger.Info("relays_checked", zap.Int("count", len(results)), zap.Int("ok", countOK(results)))
	writeJSON(w, http.StatusOK, checkResponse{Results: results})
}

// POST /api/save
func (a *Admin) Save(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) || !allowMethod(w, r, http.MethodPost) {
		return
	}
	urls, err := decodeURLs(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := a.Store.Save(urls)
	if err != nil {
		metrics.RegistrySaves.WithLabelValues("error").Inc()
		if isNormalizeErr(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Logger.Error("registry_save_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.RegistrySaves.WithLabelValues("ok").Inc()
	metrics.RegistrySize.Set(float64(len(saved)))

	git := a.Publisher.Publish(r.Context(), a.Store.Path())
	writeJSON(w, http.StatusOK, saveResponse{Relays: nonNil(saved), Git: git})
}

// decodeURLs reads {"urls": [...]}, trimming entries and dropping blanks.
// An empty body is an empty list.
func decodeURLs(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var req urlsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("bad json: %w", err)
	}
	return cleanURLs(req.URLs), nil
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func isNormalizeErr(err error) bool {
	return errors.Is(err, relayurl.ErrInvalidURL) ||
		errors.Is(err, relayurl.ErrInvalidScheme) ||
		errors.Is(err, relayurl.ErrMissingHost)
}

func countOK(results []health.Result) int {
	n := 0
	for _, r := range results {
		if r.Status == health.StatusOK {
			n++
		}
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
