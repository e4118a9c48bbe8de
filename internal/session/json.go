package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const jsonFileVersion = 1

type jsonFile struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	BannedIPs []string  `json:"banned_ips"`
}

// JSONStore keeps the ban list in a JSON file.
type JSONStore struct {
	path  string
	mutex sync.RWMutex
}

func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, fmt.Errorf("json store path is empty")
	}
	return &JSONStore{path: path}, nil
}

// BannedIPs returns the stored list. A missing file is an empty list.
func (s *JSONStore) BannedIPs(context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if f.Version > jsonFileVersion {
		return nil, fmt.Errorf("%s: unsupported version %d", s.path, f.Version)
	}
	if f.BannedIPs == nil {
		return []string{}, nil
	}
	return f.BannedIPs, nil
}

// SetBannedIPs replaces the file through a temp file and rename so readers
// never see a partial list.
func (s *JSONStore) SetBannedIPs(_ context.Context, ips []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	f := jsonFile{
		Version:   jsonFileVersion,
		UpdatedAt: time.Now().UTC(),
		BannedIPs: cloneList(ips),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *JSONStore) Close() error {
	return nil
}
