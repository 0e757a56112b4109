// Package session holds who is logged in and what they have drilled into.
// A Session is passed explicitly to whatever needs the token; nothing here
// is global.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"samparkdash/internal/sampark"
)

// ErrNotFound is returned for unknown, expired or logged-out sessions.
var ErrNotFound = errors.New("session not found")

// Selection is the district the user last drilled into. Block queries need
// its id.
type Selection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	User      sampark.User `json:"user"`
	District  *Selection   `json:"district,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// New starts a session for freshly validated credentials.
func New(creds sampark.Credentials) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Token:     creds.Token,
		User:      creds.User,
		CreatedAt: time.Now(),
	}
}

// Store keeps sessions in memory for ttl since their last change.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{cache: cache.New(ttl, ttl/2+time.Minute)}
}

// Create starts and stores a session.
func (s *Store) Create(creds sampark.Credentials) *Session {
	sess := New(creds)
	s.cache.SetDefault(sess.ID, *sess)
	return sess
}

// Get returns a copy of the session with id.
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess := v.(Session)
	if sess.District != nil {
		d := *sess.District
		sess.District = &d
	}
	return &sess, nil
}

// SelectDistrict records the district the session drilled into.
func (s *Store) SelectDistrict(id, districtID, name string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.District = &Selection{ID: districtID, Name: name}
	s.cache.SetDefault(id, *sess)
	return sess, nil
}

// Delete ends the session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// SaveFile writes sess to path, readable only by the current user.
func SaveFile(path string, sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// LoadFile reads a session saved by SaveFile. A missing file is ErrNotFound.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Token == "" {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// RemoveFile deletes a saved session. A missing file is not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
