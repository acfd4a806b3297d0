package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var (
	// ErrCredentialsNotFound is returned when no credentials exist for a label
	ErrCredentialsNotFound = errors.New("credentials not found")
	// ErrInvalidCredentials is returned for malformed or incomplete credentials
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable is returned when a store backend cannot be used
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Credentials holds one set of Twitter API credentials. Label distinguishes
// multiple credential sets (different apps or access tiers).
type Credentials struct {
	Label        string    `json:"label"`
	APIKey       string    `json:"api_key"`
	APISecret    string    `json:"api_secret"`
	AccessToken  string    `json:"access_token,omitempty"`
	AccessSecret string    `json:"access_secret,omitempty"`
	BearerToken  string    `json:"bearer_token,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Complete reports whether the credentials are usable for API calls: either
// a bearer token or a key/secret pair must be present.
func (c *Credentials) Complete() bool {
	if c == nil {
		return false
	}
	return c.BearerToken != "" || (c.APIKey != "" && c.APISecret != "")
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves a credential set
	Store(creds *Credentials) error

	// Retrieve gets the credential set with the given label
	Retrieve(label string) (*Credentials, error)

	// List returns all stored credential sets
	List() ([]*Credentials, error)

	// Delete removes the credential set with the given label
	Delete(label string) error

	// Exists checks whether a credential set exists for the label
	Exists(label string) bool
}

// Manager handles credential storage with fallback mechanisms: system
// keyring first, then an encrypted file, then environment variables.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with the available backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds.Label == "" {
		return errors.New("label is required")
	}
	if !creds.Complete() {
		return errors.New("a bearer token or an API key/secret pair is required")
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(label string) (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(label); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("credentials not found for label: %s", label)
}

// RetrieveDefault gets the default credential set: environment first, then
// the first stored set found.
func (m *Manager) RetrieveDefault() (*Credentials, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if creds, err := envStore.Retrieve(""); err == nil && creds != nil {
			return creds, nil
		}
	}

	creds, err := m.List()
	if err == nil && len(creds) > 0 {
		return creds[0], nil
	}

	return nil, errors.New("no credentials found")
}

// List returns all stored credential sets across all backends
func (m *Manager) List() ([]*Credentials, error) {
	byLabel := make(map[string]*Credentials)

	for _, store := range m.stores {
		all, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range all {
			// Keep the most recently modified version of each label
			if existing, ok := byLabel[creds.Label]; !ok || creds.LastModified.After(existing.LastModified) {
				byLabel[creds.Label] = creds
			}
		}
	}

	var result []*Credentials
	for _, creds := range byLabel {
		result = append(result, creds)
	}

	return result, nil
}

// Delete removes a credential set from all stores
func (m *Manager) Delete(label string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("credentials not found for label: %s", label)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "twgraph")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "twgraph")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "twgraph")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "twgraph")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}
