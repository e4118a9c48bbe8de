package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"lazyban/internal/validation"
)

const (
	timeFormat   = "20060102-150405"
	keepBackups  = 10
	backupFolder = ".config/lazyban/backups"
)

type Backup struct {
	Path        string
	Name        string
	Time        time.Time
	Size        int64
	Description string
}

type snapshot struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	BannedIPs []string  `json:"banned_ips"`
}

// dirOverride is set by tests.
var dirOverride string

func Dir() (string, error) {
	if dirOverride != "" {
		return dirOverride, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, backupFolder), nil
}

func resolveHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil && u.HomeDir != "" {
			return u.HomeDir, nil
		}
	}
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}

func Create(name string, ips []string) (Backup, error) {
	return CreateWithDescription(name, ips, "")
}

// CreateWithDescription writes a snapshot of ips and prunes old snapshots of
// the same list down to the newest keepBackups.
func CreateWithDescription(name string, ips []string, description string) (Backup, error) {
	if err := validation.IsValidSetName(name); err != nil {
		return Backup{}, fmt.Errorf("invalid backup name: %w", err)
	}
	dir, err := Dir()
	if err != nil {
		return Backup{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Backup{}, err
	}

	ts := time.Now()
	suffix := ""
	desc := strings.TrimSpace(description)
	if desc != "" {
		desc = truncateDescription(desc, 40)
		suffix = "__" + url.PathEscape(desc)
	}
	if ips == nil {
		ips = []string{}
	}
	data, err := json.MarshalIndent(snapshot{Name: name, CreatedAt: ts, BannedIPs: ips}, "", "  ")
	if err != nil {
		return Backup{}, err
	}
	file := fmt.Sprintf("banlist-%s-%s%s.json", name, ts.Format(timeFormat), suffix)
	dest := filepath.Join(dir, file)
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return Backup{}, err
	}
	slog.Info("backup created", "name", name, "entries", len(ips), "dest", dest)

	b := Backup{
		Path:        dest,
		Name:        name,
		Time:        ts,
		Size:        int64(len(data)),
		Description: desc,
	}
	_ = prune(name, keepBackups)
	return b, nil
}

// List returns the snapshots of name, newest first.
func List(name string) ([]Backup, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	prefix := "banlist-" + name + "-"
	items := make([]Backup, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := entry.Name()
		if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ".json") {
			continue
		}
		tsPart := strings.TrimSuffix(strings.TrimPrefix(file, prefix), ".json")
		desc := ""
		if parts := strings.SplitN(tsPart, "__", 2); len(parts) == 2 {
			tsPart = parts[0]
			if decoded, err := url.PathUnescape(parts[1]); err == nil {
				desc = decoded
			} else {
				desc = parts[1]
			}
		}
		ts, err := time.ParseInLocation(timeFormat, tsPart, time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, Backup{
			Path:        filepath.Join(dir, file),
			Name:        name,
			Time:        ts,
			Size:        info.Size(),
			Description: desc,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Time.After(items[j].Time)
	})
	return items, nil
}

// Load reads the ban list stored in a snapshot file.
func Load(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("backup path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.BannedIPs == nil {
		return []string{}, nil
	}
	return snap.BannedIPs, nil
}

func prune(name string, keep int) error {
	if keep <= 0 {
		return nil
	}
	items, err := List(name)
	if err != nil {
		return err
	}
	if len(items) <= keep {
		return nil
	}
	for _, b := range items[keep:] {
		_ = os.Remove(b.Path)
	}
	return nil
}

func truncateDescription(desc string, max int) string {
	if max <= 0 || desc == "" {
		return ""
	}
	if utf8.RuneCountInString(desc) <= max {
		return desc
	}
	runes := []rune(desc)
	return string(runes[:max])
}
