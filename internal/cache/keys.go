package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "bloomforge"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// SessionKey is where a serialised session lives.
func SessionKey(sessionID string) string {
	return GenerateCacheKey("session", "data", sessionID)
}

// SessionIndexKey is the hash of session id -> creation unix time used by the sweeper.
func SessionIndexKey() string {
	return GenerateCacheKey("session", "index", "all")
}

// EmbeddingKey caches one embedding vector per source and text hash.
func EmbeddingKey(source, text string) string {
	return GenerateCacheKey("embedding", source, HashString(text))
}

// HashString returns the hex sha256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
