package sessionsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// TokenPair holds the two tokens of a session.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenStore persists a session's token pair between requests. Implementations
// must be safe for concurrent use.
type TokenStore interface {
	Load() (TokenPair, error)
	Save(pair TokenPair) error
	Clear() error
}

// MemoryStore keeps the pair in memory. Zero value is ready to use.
type MemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
}

func (s *MemoryStore) Load() (TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, nil
}

func (s *MemoryStore) Save(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Save(TokenPair{})
}

// FileStore persists the pair as JSON on disk, for CLI tools that need the
// session to survive process restarts. The file is written with 0600.
type FileStore struct {
	Path string

	mu sync.Mutex
}

func (s *FileStore) Load() (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return TokenPair{}, nil
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("read token file: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("parse token file: %w", err)
	}
	return pair, nil
}

func (s *FileStore) Save(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
