package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/alexanderramin/smartcal/internal/fsutil"
)

// CredentialStore persists the API key as {"api_key": "..."}.
type CredentialStore struct {
	path string
}

type credentialFile struct {
	APIKey string `json:"api_key"`
}

// NewCredentialStore creates a store backed by path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the backing file path.
func (s *CredentialStore) Path() string { return s.path }

// Load returns the saved key. A missing file yields "" and no error.
func (s *CredentialStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential file: %w", err)
	}
	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("decoding credential file: %w", err)
	}
	return strings.TrimSpace(f.APIKey), nil
}

// Save writes key with owner-only permissions.
func (s *CredentialStore) Save(key string) error {
	data, err := json.MarshalIndent(credentialFile{APIKey: key}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	return fsutil.WriteFileAtomic(s.path, append(data, '\n'), 0o600)
}
