package health

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserAgent identifies the admin tool to relay operators.
const UserAgent = "kreo-relay-admin"

const (
	DefaultTimeout     = 8 * time.Second
	DefaultConcurrency = 16
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
)

type Result struct {
	URL    string `json:"url"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

type Prober struct {
	Timeout     time.Duration
	Concurrency int
	TorSocks5   string
	Logger      *zap.Logger

	client    *http.Client
	torClient *http.Client
}
