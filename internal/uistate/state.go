// Package uistate persists editor preferences that are not part of the ban
// list, such as the last editor size.
package uistate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// EditorSizeKey is where the ban list editor keeps its size.
const EditorSizeKey = "BanListEditor/Size"

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

type State struct {
	Sizes map[string]Size `json:"sizes"`
}

func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "state.json")
}

// Load reads the state file. A missing file yields an empty state.
func Load(path string) (State, error) {
	state := State{Sizes: make(map[string]Size)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return State{Sizes: make(map[string]Size)}, fmt.Errorf("decode %s: %w", path, err)
	}
	if state.Sizes == nil {
		state.Sizes = make(map[string]Size)
	}
	return state, nil
}

func (s State) Size(key string) (Size, bool) {
	size, ok := s.Sizes[key]
	if !ok || !size.Valid() {
		return Size{}, false
	}
	return size, true
}

func (s *State) SetSize(key string, width, height int) {
	if s.Sizes == nil {
		s.Sizes = make(map[string]Size)
	}
	s.Sizes[key] = Size{Width: width, Height: height}
}

func (s State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
