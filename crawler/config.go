package crawler

import (
	"time"
)

type ExtractorConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxChars     int
	MaxBodyBytes int64
}

// DefaultConfig returns a default extractor configuration
func DefaultConfig() *ExtractorConfig {
	return &ExtractorConfig{
		Timeout:      10 * time.Second,
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		MaxChars:     5000,
		MaxBodyBytes: 5 << 20,
	}
}
