package medium

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by Set when the write would push the medium
// past its byte budget. Nothing is written in that case.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Medium is a string key/value store with a byte budget, modelled on browser
// local storage. A quota of zero or less means unlimited.
type Medium interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Usage(ctx context.Context) (Usage, error)
}

type Usage struct {
	UsedBytes  int64 `json:"usedBytes"`
	QuotaBytes int64 `json:"quotaBytes"`
	Entries    int   `json:"entries"`
}

// EntrySize is the number of bytes an entry counts against the quota.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// CheckQuota reports ErrQuotaExceeded when adding size bytes to used would
// exceed quota.
func CheckQuota(used, size, quota int64) error {
	if quota > 0 && used+size > quota {
		return ErrQuotaExceeded
	}
	return nil
}
