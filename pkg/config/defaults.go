package config

import "time"

// Defaults.
const (
	DefaultListen  = ":8080"
	DefaultTimeout = 30 * time.Second
	DefaultRegion  = "us-east-1"

	// DefaultMaxOutputKB caps captured process output. Cloud CLI help pages
	// run long; anything past this is truncated, never buffered unbounded.
	DefaultMaxOutputKB = 512
)

// Default returns the baseline configuration before file/env/flag overrides.
func Default() Config {
	return Config{
		Listen:        DefaultListen,
		Timeout:       DefaultTimeout,
		MaxOutputKB:   DefaultMaxOutputKB,
		DefaultRegion: DefaultRegion,
		Binaries: BinaryConfig{
			AWS:    "aws",
			Azure:  "az",
			Gcloud: "gcloud",
		},
	}
}
