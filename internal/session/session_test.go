package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"lazyban/internal/backup"
	"lazyban/internal/config"
)

func TestMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	src := []string{"1.1.1.1"}
	m := NewMemory(src...)
	src[0] = "mutated"

	got, err := m.BannedIPs(ctx)
	if err != nil {
		t.Fatalf("BannedIPs() error = %v", err)
	}
	if got[0] != "1.1.1.1" {
		t.Fatalf("BannedIPs() = %v, store shares caller slice", got)
	}
	got[0] = "mutated"
	again, _ := m.BannedIPs(ctx)
	if again[0] != "1.1.1.1" {
		t.Fatalf("BannedIPs() returned internal slice")
	}
	if err := m.SetBannedIPs(ctx, []string{"2.2.2.2"}); err != nil {
		t.Fatalf("SetBannedIPs() error = %v", err)
	}
	if m.Writes() != 1 {
		t.Fatalf("Writes() = %d, want 1", m.Writes())
	}
}

func TestJSONStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "banlist.json")
	s, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}

	got, err := s.BannedIPs(ctx)
	if err != nil {
		t.Fatalf("BannedIPs() on missing file error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("BannedIPs() on missing file = %v, want empty", got)
	}

	want := []string{"1.1.1.1", "2606:4700:4700::1111"}
	if err := s.SetBannedIPs(ctx, want); err != nil {
		t.Fatalf("SetBannedIPs() error = %v", err)
	}
	got, err = s.BannedIPs(ctx)
	if err != nil {
		t.Fatalf("BannedIPs() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BannedIPs() = %v, want %v", got, want)
	}

	if err := s.SetBannedIPs(ctx, nil); err != nil {
		t.Fatalf("SetBannedIPs(nil) error = %v", err)
	}
	got, _ = s.BannedIPs(ctx)
	if len(got) != 0 {
		t.Fatalf("BannedIPs() after clear = %v, want empty", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestJSONStoreRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.json")
	if err := os.WriteFile(path, []byte(`{"version": 9, "banned_ips": []}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewJSONStore(path)
	if _, err := s.BannedIPs(context.Background()); err == nil {
		t.Fatalf("BannedIPs() expected version error")
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "banlist.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	want := []string{"9.9.9.9", "1.1.1.1", "::1"}
	if err := s.SetBannedIPs(ctx, want); err != nil {
		t.Fatalf("SetBannedIPs() error = %v", err)
	}
	got, err := s.BannedIPs(ctx)
	if err != nil {
		t.Fatalf("BannedIPs() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BannedIPs() = %v, want %v (order preserved)", got, want)
	}

	if err := s.SetBannedIPs(ctx, []string{"8.8.8.8"}); err != nil {
		t.Fatalf("SetBannedIPs() replace error = %v", err)
	}
	got, _ = s.BannedIPs(ctx)
	if !reflect.DeepEqual(got, []string{"8.8.8.8"}) {
		t.Fatalf("BannedIPs() after replace = %v, want [8.8.8.8]", got)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LAZYBAN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAZYBAN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, "", 0, "lazyban:test:"+t.Name())
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	t.Cleanup(func() {
		_ = s.SetBannedIPs(ctx, nil)
	})

	want := []string{"1.1.1.1", "2606:4700:4700::1111"}
	if err := s.SetBannedIPs(ctx, want); err != nil {
		t.Fatalf("SetBannedIPs() error = %v", err)
	}
	got, err := s.BannedIPs(ctx)
	if err != nil {
		t.Fatalf("BannedIPs() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BannedIPs() = %v, want %v", got, want)
	}
}

func TestWithBackupSnapshotsOnce(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUDO_USER", "")

	ctx := context.Background()
	mem := NewMemory("1.1.1.1")
	s := WithBackup(mem, "shadow")

	if err := s.SetBannedIPs(ctx, []string{"1.1.1.1", "2.2.2.2"}); err != nil {
		t.Fatalf("SetBannedIPs() error = %v", err)
	}
	if err := s.SetBannedIPs(ctx, []string{"3.3.3.3"}); err != nil {
		t.Fatalf("SetBannedIPs() second error = %v", err)
	}

	items, err := backup.List("shadow")
	if err != nil {
		t.Fatalf("backup.List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(backups) = %d, want 1", len(items))
	}
	saved, err := backup.Load(items[0].Path)
	if err != nil {
		t.Fatalf("backup.Load() error = %v", err)
	}
	if !reflect.DeepEqual(saved, []string{"1.1.1.1"}) {
		t.Fatalf("backup = %v, want the list before the first write", saved)
	}
	if mem.Writes() != 2 {
		t.Fatalf("Writes() = %d, want 2", mem.Writes())
	}
}

func TestWithBackupInvalidNameAbortsWrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUDO_USER", "")

	mem := NewMemory("1.1.1.1")
	s := WithBackup(mem, "../escape")
	if err := s.SetBannedIPs(context.Background(), []string{"2.2.2.2"}); err == nil {
		t.Fatalf("SetBannedIPs() expected backup error")
	}
	if mem.Writes() != 0 {
		t.Fatalf("Writes() = %d, want 0 after failed backup", mem.Writes())
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Backend = "etcd"
	if _, err := Open(context.Background(), cfg); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Open() error = %v, want ErrUnknownBackend", err)
	}
}

func TestOpenJSON(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Path = filepath.Join(t.TempDir(), "banlist.json")
	cfg.Session.Backup = false

	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*JSONStore); !ok {
		t.Fatalf("Open() = %T, want *JSONStore", s)
	}
}
