package settings

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var envRef = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// Load reads a YAML settings file, substituting ${VAR} references from the
// environment before parsing.
func Load(path string, logger *zap.Logger) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	b = envRef.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(envRef.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during config expansion",
				zap.String("file", path),
				zap.String("var", k))
		}
		return []byte(val)
	})

	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	if f.Probe.Timeout != "" {
		if _, err := time.ParseDuration(f.Probe.Timeout); err != nil {
			return f, fmt.Errorf("%s: probe.timeout: %w", path, err)
		}
	}
	if f.Probe.Concurrency < 0 {
		return f, fmt.Errorf("%s: probe.concurrency must be positive", path)
	}
	return f, nil
}
