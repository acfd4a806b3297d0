package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"twgraph/pkg/logger"
	"twgraph/pkg/twitter"
)

const (
	userFileName     = "user.json"
	tweetsFileName   = "tweets.json"
	entitiesFileName = "entities.json"

	resolvedFileName   = "resolved_users.json"
	unresolvedFileName = "unresolved_users.json"
	statsFileName      = "run_stats.json"
)

// Manager owns the on-disk layout: per-user directories under
// <base>/users/<id> plus the run-level aggregate documents in <base>.
type Manager struct {
	baseDir string
	logger  logger.Logger
}

// NewManager creates a storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "users"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		baseDir: baseDir,
		logger:  logger.GetLogger(),
	}, nil
}

// BaseDir returns the output root
func (m *Manager) BaseDir() string {
	return m.baseDir
}

func (m *Manager) userDir(identity string) string {
	return filepath.Join(m.baseDir, "users", identity)
}

// ListUserDocuments returns the identities that already have a completed
// per-user document on disk, in no particular order.
func (m *Manager) ListUserDocuments() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.baseDir, "users"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user directories: %w", err)
	}

	var identities []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if m.HasUserDocument(entry.Name()) {
			identities = append(identities, entry.Name())
		}
	}
	return identities, nil
}

// HasUserDocument reports whether a completed per-user document exists for
// the identity. This is the skip signal for idempotent resume.
func (m *Manager) HasUserDocument(identity string) bool {
	_, err := os.Stat(filepath.Join(m.userDir(identity), userFileName))
	return err == nil
}

// WriteUserDocument persists the per-user document atomically
func (m *Manager) WriteUserDocument(doc *UserDocument) error {
	dir := m.userDir(doc.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, userFileName), doc); err != nil {
		return err
	}

	m.logger.DebugWithFields("user document written", map[string]interface{}{
		"identity": doc.ID,
		"name":     doc.Name,
	})
	return nil
}

// LoadUserDocument reads a previously written per-user document
func (m *Manager) LoadUserDocument(identity string) (*UserDocument, error) {
	file, err := os.Open(filepath.Join(m.userDir(identity), userFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open user document: %w", err)
	}
	defer file.Close()

	var doc UserDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return &doc, nil
}

// WriteTweets persists the trimmed tweet records of a user
func (m *Manager) WriteTweets(identity string, tweets []twitter.Tweet) error {
	dir := m.userDir(identity)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}
	return writeJSON(filepath.Join(dir, tweetsFileName), tweets)
}

// WriteEntities persists a user's entity tally
func (m *Manager) WriteEntities(identity string, tally *EntityTally) error {
	dir := m.userDir(identity)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}
	return writeJSON(filepath.Join(dir, entitiesFileName), tally)
}

// WriteResolved persists the aggregate of visited users
func (m *Manager) WriteResolved(users map[string]UserSummary) error {
	return writeJSON(filepath.Join(m.baseDir, resolvedFileName), users)
}

// WriteUnresolved persists the aggregate of ignored and never-visited users
func (m *Manager) WriteUnresolved(users map[string]UserSummary) error {
	return writeJSON(filepath.Join(m.baseDir, unresolvedFileName), users)
}

// WriteRunStats persists the run-end statistics snapshot
func (m *Manager) WriteRunStats(doc *RunStatsDocument) error {
	return writeJSON(filepath.Join(m.baseDir, statsFileName), doc)
}

// writeJSON writes v to path atomically: encode to a temp file, sync, then
// rename over the target.
func writeJSON(path string, v interface{}) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync document: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close document: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace document: %w", err)
	}

	return nil
}
