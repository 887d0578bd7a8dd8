// Package identity hands out the durable per-browser session identifier.
package identity

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jordanlanch/funneltrack/pkg/logger"
)

// DefaultKey is the persistent slot holding the session identifier
const DefaultKey = "search_session_id"

// KeyValueStorage is a persistent string slot store, typically a browser
// cookie jar
type KeyValueStorage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Provider generates and persists session identifiers
type Provider struct {
	key    string
	logger logger.Logger
	now    func() time.Time
}

// NewProvider creates a provider using key as the storage slot
func NewProvider(key string, log logger.Logger) *Provider {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{key: key, logger: log, now: time.Now}
}

// Key returns the storage slot name
func (p *Provider) Key() string {
	return p.key
}

// GetOrCreate returns the stored identifier, generating and storing a new
// one on first use. A nil storage yields "".
func (p *Provider) GetOrCreate(storage KeyValueStorage) string {
	if storage == nil {
		return ""
	}
	if id, ok := storage.Get(p.key); ok && id != "" {
		return id
	}

	id := p.newID()
	if err := storage.Set(p.key, id); err != nil {
		p.logger.Error("failed to persist session id", "session_id", id, "error", err)
	}
	return id
}

// newID formats session_<unix millis>_<9 random base32 chars>. The entropy
// is drawn fresh per id; a monotonic source would repeat the high bits
// within one millisecond.
func (p *Provider) newID() string {
	now := p.now()
	u := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	suffix := strings.ToLower(u.String()[10:19])
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

// MemoryStorage is an in-process KeyValueStorage
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns how many times Set was called
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
