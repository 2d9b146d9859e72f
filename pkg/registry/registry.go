package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

const filePerm = 0o644

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptRegistry, err)
	}
	var raw struct {
		Relays *[]string `json:"relays"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrCorruptRegistry, s.path, err)
	}
	if raw.Relays == nil {
		return Document{}, fmt.Errorf("%w: %s: relays must be an array of strings", ErrCorruptRegistry, s.path)
	}
	return Document{Relays: *raw.Relays}, nil
}

// Save replaces the registry with addrs after parsing, deduplicating and
// sorting them. Nothing is written if any entry fails to parse.
func (s *Store) Save(addrs []string) ([]string, error) {
	parsed, err := relayurl.ParseAll(addrs)
	if err != nil {
		return nil, err
	}
	list := Dedupe(parsed)

	b, err := Encode(Document{Relays: list})
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.path, b); err != nil {
		return nil, err
	}
	s.logger.Info("relays_saved",
		zap.String("file", s.path),
		zap.Int("input", len(addrs)),
		zap.Int("saved", len(list)),
	)
	return list, nil
}

// Dedupe keeps the first original string seen for each key and returns the
// survivors sorted by their raw text.
func Dedupe(addrs []relayurl.Address) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		k := a.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a.Raw)
	}
	sort.Strings(out)
	return out
}

// Encode renders the document as 2-space indented JSON with a trailing newline.
func Encode(doc Document) ([]byte, error) {
	if doc.Relays == nil {
		doc.Relays = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
