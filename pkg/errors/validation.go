package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxKeyLength bounds node and edge keys accepted from external input.
const maxKeyLength = 1024

// ValidateNodeKey validates a node key received from external input.
//
// Keys are opaque to the engines, but the HTTP API and the file loaders
// reject keys that cannot be meaningful:
//   - No empty keys
//   - No control characters or null bytes
//   - Maximum length of 1024 bytes
//
// Whether a key decodes to a valid address is checked separately by the
// tree builder, since it depends on the configured codec.
func ValidateNodeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "node key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "node key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "node key %q contains invalid control characters", key)
		}
	}

	return nil
}

// ValidateDimensions checks that a viewport size is finite and non-negative.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidDimensions, "viewport %vx%v is not finite", width, height)
		}
		if v < 0 {
			return New(ErrCodeInvalidDimensions, "viewport %vx%v has a negative side", width, height)
		}
	}
	return nil
}

// ValidateDelimiter validates a key delimiter used by the address codec.
func ValidateDelimiter(sep string) error {
	if sep == "" {
		return New(ErrCodeInvalidOption, "key delimiter cannot be empty")
	}
	for _, r := range sep {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOption, "key delimiter contains control characters")
		}
	}
	return nil
}

// ValidatePath validates a file path given to the CLI or the config loader.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateRedisURL validates a Redis connection URL for the layout cache.
// It only checks the scheme; the redis client parses the rest.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidOption, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidOption, "redis URL must use redis or rediss scheme")
	}

	return nil
}
