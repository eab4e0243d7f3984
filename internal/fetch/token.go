package fetch

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenSource generates callback tokens of the form <prefix><ULID>. ULIDs
// from a monotonic entropy source never repeat within the process.
type TokenSource struct {
	prefix string

	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewTokenSource returns a source backed by crypto/rand.
func NewTokenSource(prefix string) *TokenSource {
	return &TokenSource{
		prefix:  prefix,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a new token.
func (s *TokenSource) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(s.now()), s.entropy)
	if err != nil {
		return "", err
	}
	return s.prefix + id.String(), nil
}
