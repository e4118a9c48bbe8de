package backup

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func withDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "backups")
	old := dirOverride
	dirOverride = dir
	t.Cleanup(func() {
		dirOverride = old
	})
	return dir
}

func TestCreateWithDescription_InvalidName(t *testing.T) {
	withDir(t)
	_, err := CreateWithDescription("../bad", nil, "desc")
	if err == nil {
		t.Fatalf("expected validation error for invalid name")
	}
}

func TestCreateAndLoad(t *testing.T) {
	withDir(t)

	ips := []string{"1.1.1.1", "2606:4700:4700::1111"}
	b, err := CreateWithDescription("shadow", ips, "  before save  ")
	if err != nil {
		t.Fatalf("CreateWithDescription() error = %v", err)
	}
	if b.Name != "shadow" {
		t.Fatalf("backup name = %q, want %q", b.Name, "shadow")
	}
	if b.Description != "before save" {
		t.Fatalf("backup description = %q, want %q", b.Description, "before save")
	}

	got, err := Load(b.Path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, ips) {
		t.Fatalf("Load() = %v, want %v", got, ips)
	}
}

func TestCreateEmptyListLoadsEmpty(t *testing.T) {
	withDir(t)
	b, err := Create("shadow", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := Load(b.Path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Load() = %#v, want empty non-nil list", got)
	}
}

func TestList_SortedAndDecodedDescription(t *testing.T) {
	dir := withDir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir backup dir: %v", err)
	}

	t1 := time.Now().Add(-1 * time.Hour).Format(timeFormat)
	t2 := time.Now().Format(timeFormat)
	f1 := filepath.Join(dir, "banlist-shadow-"+t1+"__first%20backup.json")
	f2 := filepath.Join(dir, "banlist-shadow-"+t2+"__second%20backup.json")
	other := filepath.Join(dir, "banlist-other-"+t2+".json")
	for _, f := range []string{f1, f2, other} {
		if err := os.WriteFile(f, []byte(`{"banned_ips":[]}`), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	items, err := List("shadow")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(items))
	}
	if !items[0].Time.After(items[1].Time) {
		t.Fatalf("backups are not sorted descending by time")
	}
	if items[0].Description != "second backup" {
		t.Fatalf("description = %q, want %q", items[0].Description, "second backup")
	}
}

func TestListMissingDir(t *testing.T) {
	withDir(t)
	items, err := List("shadow")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("List() = %v, want empty", items)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := withDir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir backup dir: %v", err)
	}
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < keepBackups+3; i++ {
		name := "banlist-shadow-" + base.Add(time.Duration(i)*time.Minute).Format(timeFormat) + ".json"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0o644); err != nil {
			t.Fatalf("write backup: %v", err)
		}
	}

	if err := prune("shadow", keepBackups); err != nil {
		t.Fatalf("prune() error = %v", err)
	}
	items, err := List("shadow")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != keepBackups {
		t.Fatalf("len(List()) = %d, want %d", len(items), keepBackups)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("Load(\"\") expected error")
	}
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load(broken) expected error")
	}
}

func TestTruncateDescription(t *testing.T) {
	if got := truncateDescription("short", 10); got != "short" {
		t.Fatalf("truncateDescription short = %q", got)
	}
	if got := truncateDescription("abcdef", 3); got != "abc" {
		t.Fatalf("truncateDescription long = %q, want abc", got)
	}
	if got := truncateDescription("abcdef", 0); got != "" {
		t.Fatalf("truncateDescription max 0 = %q, want empty", got)
	}
}
