// Package store is the persistence port for the checklist and its run
// state: load last saved state, save current state. The two records stay
// independent so editing structure never clears progress.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
)

// DB is the persisted workspace state: the checklist snapshot (ordered) and
// the run snapshot (item id -> completed).
type DB struct {
	Version int                   `json:"version"`
	Items   []model.ChecklistItem `json:"items"`
	Run     map[string]bool       `json:"run"`
}

type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Load reads the workspace state. A missing or empty workspace yields an
// empty DB, never an error.
func (s Store) Load() (*DB, error) {
	return s.loadSQLite()
}

func (s Store) Save(db *DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	return s.saveSQLite(db)
}

// ConfigDir resolves the per-user config root (~/.stepwise), with an env
// override so tests never touch the real home directory.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("STEPWISE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stepwise"), nil
}

// WorkspaceDir resolves the storage dir for a named workspace.
func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	// Treated as a directory name; keep it simple.
	return name, nil
}
