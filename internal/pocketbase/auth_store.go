package pocketbase

import "sync"

// AuthStore holds the token attached to every request made by its Client.
type AuthStore struct {
	mu     sync.RWMutex
	token  string
	record *Record
}

// Save replaces the stored token and auth record. record may be nil.
func (s *AuthStore) Save(token string, record *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.record = record
}

func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *AuthStore) Record() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

func (s *AuthStore) IsValid() bool {
	return s.Token() != ""
}

func (s *AuthStore) Clear() {
	s.Save("", nil)
}
