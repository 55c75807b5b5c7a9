// Package cache persists video frames and vision verdicts so repeated
// runs over the same session re-decode nothing and issue no new API
// calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// FrameKey generates the cache key for an extracted frame. Frames are
// keyed by (label, timestamp) within a video so ladder retries and
// re-runs reuse prior decodes.
func FrameKey(videoID, speakerID string, timestamp float64) string {
	return hashKey(fmt.Sprintf("frame:%s:%s:%05d", videoID, speakerID, int(timestamp)))
}

// VerdictKey generates the cache key for a vision verdict on a frame.
func VerdictKey(videoID, speakerID string, timestamp float64) string {
	return hashKey(fmt.Sprintf("verdict:%s:%s:%05d", videoID, speakerID, int(timestamp)))
}

func hashKey(raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return "plenaria:v1:" + hex.EncodeToString(hash[:])
}
