// internal/auth/session.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "afind"
	// FallbackDir is the directory, relative to home, for file-based storage
	FallbackDir = ".afind/sessions"

	manifestKey = "_manifest"
)

var (
	ErrEmptyName       = errors.New("session name cannot be empty")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionData is a named set of cookies for one site
type SessionData struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Store keeps sessions in the OS keyring, or in a directory when no
// keyring is available (CI, containers, Codespaces).
type Store struct {
	dir string
}

// NewStore returns a keyring-backed store, falling back to ~/.afind/sessions
func NewStore() (*Store, error) {
	if keyringAvailable() {
		return &Store{}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, FallbackDir)), nil
}

// NewFileStore returns a store writing one JSON file per session in dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir}
}

func keyringAvailable() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return false
	}
	testKey := "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, testKey)
	return true
}

// Backend names where sessions are kept
func (s *Store) Backend() string {
	if s.dir != "" {
		return s.dir
	}
	return "keyring"
}

func (s *Store) path(name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save stores session, replacing any session with the same name
func (s *Store) Save(session *SessionData) error {
	if session.Name == "" {
		return ErrEmptyName
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if s.dir != "" {
		path, err := s.path(session.Name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(session.Name, true)
}

// Load returns the named session; expired sessions are an error
func (s *Store) Load(name string) (*SessionData, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var data string
	if s.dir != "" {
		path, err := s.path(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get session path: %w", err)
		}
		fileData, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = string(fileData)
	} else {
		v, err := keyring.Get(KeyringService, name)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
		data = v
	}

	var session SessionData
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, name)
	}
	return &session, nil
}

// Delete removes the named session; deleting a missing session is not an error
func (s *Store) Delete(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	if s.dir != "" {
		path, err := s.path(name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(name, false)
}

// List returns stored session names, sorted
func (s *Store) List() ([]string, error) {
	var sessions []string

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
				sessions = append(sessions, strings.TrimSuffix(entry.Name(), ".json"))
			}
		}
	} else {
		manifest, err := keyring.Get(KeyringService, manifestKey)
		if err != nil {
			return []string{}, nil
		}
		if err := json.Unmarshal([]byte(manifest), &sessions); err != nil {
			return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
		}
	}

	sort.Strings(sessions)
	return sessions, nil
}

// updateManifest tracks keyring session names, which the keyring cannot enumerate
func (s *Store) updateManifest(name string, add bool) error {
	sessions, _ := s.List()

	kept := sessions[:0]
	for _, n := range sessions {
		if n != name {
			kept = append(kept, n)
		}
	}
	if add {
		kept = append(kept, name)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}

// NewSession builds a session whose expiry is the earliest cookie expiry
func NewSession(name, url string, cookies []Cookie) *SessionData {
	session := &SessionData{
		Name:      name,
		URL:       url,
		Cookies:   cookies,
		CreatedAt: time.Now(),
	}
	for _, c := range cookies {
		if c.Expires <= 0 {
			continue
		}
		expiry := time.Unix(int64(c.Expires), 0)
		if session.ExpiresAt.IsZero() || expiry.Before(session.ExpiresAt) {
			session.ExpiresAt = expiry
		}
	}
	return session
}
