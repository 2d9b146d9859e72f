package registry

import (
	"errors"

	"go.uber.org/zap"
)

var ErrCorruptRegistry = errors.New("corrupt registry")

// Document is the on-disk shape of relays.json.
type Document struct {
	Relays []string `json:"relays"`
}

type Store struct {
	path   string
	logger *zap.Logger
}
