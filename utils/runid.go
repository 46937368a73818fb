package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID returns a 12-character hex run identifier. A non-empty seed
// makes the ID deterministic, which keeps re-runs of the same scrape
// addressable; otherwise the ID is derived from the current time and a
// random UUID.
func GenerateRunID(seed string) string {
	var sum [16]byte
	if seed != "" {
		sum = md5.Sum([]byte(seed))
	} else {
		combined := fmt.Sprintf("%s-%s", time.Now().Format(time.RFC3339Nano), uuid.NewString())
		sum = md5.Sum([]byte(combined))
	}
	return hex.EncodeToString(sum[:])[:12]
}

// FormatRunID prefixes a run ID with the current date, e.g. "20250823_ab12cd34ef56".
func FormatRunID(runID string) string {
	return time.Now().Format("20060102") + "_" + runID
}
