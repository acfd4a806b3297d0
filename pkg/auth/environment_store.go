package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// This mirrors the variables pkg/config reads, so a .env file works for both.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(label string) (*Credentials, error) {
	creds := &Credentials{
		Label:        label,
		APIKey:       os.Getenv("TWGRAPH_API_KEY"),
		APISecret:    os.Getenv("TWGRAPH_API_SECRET"),
		AccessToken:  os.Getenv("TWGRAPH_ACCESS_TOKEN"),
		AccessSecret: os.Getenv("TWGRAPH_ACCESS_SECRET"),
		BearerToken:  os.Getenv("TWGRAPH_BEARER_TOKEN"),
		LastModified: time.Now(),
	}

	if !creds.Complete() {
		return nil, ErrCredentialsNotFound
	}

	if creds.Label == "" {
		creds.Label = "default"
	}

	return creds, nil
}

// List returns a single credential set if environment variables are set
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(label string) bool {
	creds, err := e.Retrieve(label)
	return err == nil && creds != nil
}
