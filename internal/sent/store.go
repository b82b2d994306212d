// Package sent records which contributor summaries were already mailed so an
// unchanged list is not delivered twice to the same recipient.
package sent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/contribs/internal/format"
	"github.com/spiffcs/contribs/internal/log"
)

// Entry represents the last delivery for one key
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	SentAt      time.Time `json:"sentAt"`
}

// Store manages persistence of sent summaries
type Store struct {
	path    string
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewStore opens the ledger in the user cache directory
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(cacheDir, "contribs", "sent.json"))
}

// NewStoreAt opens the ledger stored at path, creating its directory
func NewStoreAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
	}

	if err := s.load(); err != nil {
		log.Debug("could not load sent ledger, starting fresh", "error", err)
		s.entries = make(map[string]Entry)
	}

	return s, nil
}

// Key identifies a delivery by recipient and subject
func Key(recipient, subject string) string {
	return strings.ToLower(strings.TrimSpace(recipient)) + "\x00" + strings.TrimSpace(subject)
}

// Fingerprint hashes the rows that would be delivered.
// Two lists render the same message exactly when their fingerprints match.
func Fingerprint(rows []format.DisplayRow) string {
	h := sha256.New()
	for _, r := range rows {
		fmt.Fprintf(h, "%s\x00%s\x00%t\x00%d\n", r.ID, r.Label, r.IsSummary, r.Count)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// load reads the entries from disk
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &s.entries)
}

// save writes the entries to disk
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// Record marks fingerprint as delivered under key at sentAt
func (s *Store) Record(key, fingerprint string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Fingerprint: fingerprint,
		SentAt:      sentAt,
	}

	return s.save()
}

// Forget removes key from the ledger
func (s *Store) Forget(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return s.save()
}

// ShouldSend reports whether a summary with fingerprint should be delivered under key.
// It is false only when the same fingerprint was already sent at or after cutoff.
// A zero cutoff suppresses an identical summary forever.
func (s *Store) ShouldSend(key, fingerprint string, cutoff time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists {
		return true
	}
	if entry.Fingerprint != fingerprint {
		return true
	}

	return entry.SentAt.Before(cutoff)
}

// Last returns the entry recorded for key
func (s *Store) Last(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Count returns the number of recorded keys
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
