// Package transform provides row sampling and column anonymization for
// containers.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
)

// Anonymizer hashes values with a salt. Repeated values hash once and
// come from a cache, which keeps key columns consistent across rows.
type Anonymizer struct {
	salt  []byte
	mu    sync.RWMutex
	cache map[string]string
}

// NewAnonymizer creates an anonymizer. The salt keeps equal inputs
// from being recognizable across datasets; it may be empty.
func NewAnonymizer(salt string) *Anonymizer {
	return &Anonymizer{
		salt:  []byte(salt),
		cache: make(map[string]string),
	}
}

// Hash anonymizes a value using salted SHA-256, hex-encoded and
// truncated to 16 characters. Empty values stay empty.
func (a *Anonymizer) Hash(value string) string {
	if value == "" {
		return ""
	}

	a.mu.RLock()
	cached, ok := a.cache[value]
	a.mu.RUnlock()
	if ok {
		return cached
	}

	h := sha256.New()
	h.Write(a.salt)
	h.Write([]byte(value))
	result := hex.EncodeToString(h.Sum(nil))[:16]

	a.mu.Lock()
	a.cache[value] = result
	a.mu.Unlock()
	return result
}

// ClearCache drops the value cache.
func (a *Anonymizer) ClearCache() {
	a.mu.Lock()
	a.cache = make(map[string]string)
	a.mu.Unlock()
}

// AnonymizeHeaders replaces every value under the named headers with
// its salted hash. Unknown headers are a hard error before anything is
// touched.
func AnonymizeHeaders(c *container.Container, headers []string, salt string) error {
	for _, h := range headers {
		if c.HeaderIndexOf(h) < 0 {
			return errors.Newf(errors.CodeNoSuchHeader, "cannot anonymize unknown header %q", h)
		}
	}

	anon := NewAnonymizer(salt)
	for _, h := range headers {
		values := c.GetColumn(h)
		for i, v := range values {
			values[i] = anon.Hash(v)
		}
		if _, err := c.SetColumn(h, values); err != nil {
			return err
		}
	}
	return nil
}
