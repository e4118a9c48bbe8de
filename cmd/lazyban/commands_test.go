package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lazyban/internal/session"
)

type staticCountries map[string]string

func (s staticCountries) Country(ip string) string {
	return s[ip]
}

func TestEditListAdd(t *testing.T) {
	store := session.NewMemory("1.1.1.1")
	var out bytes.Buffer

	err := editList(context.Background(), &out, store, []string{"2606:4700:4700:0:0:0:0:1111", "1.1.1.1", "bogus"}, addIPs)
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("editList() error = %v, want %v", err, errSomeFailed)
	}
	got, _ := store.BannedIPs(context.Background())
	want := []string{"1.1.1.1", "2606:4700:4700::1111"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("session list = %v, want %v", got, want)
	}
	for _, line := range []string{
		"Banned 2606:4700:4700::1111",
		"1.1.1.1: The entered IP is already banned.",
		"bogus: The entered IP address is invalid.",
	} {
		if !strings.Contains(out.String(), line) {
			t.Fatalf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestEditListNoChangesDoesNotWrite(t *testing.T) {
	store := session.NewMemory("1.1.1.1")
	var out bytes.Buffer

	err := editList(context.Background(), &out, store, []string{"1.1.1.1"}, addIPs)
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("editList() error = %v, want %v", err, errSomeFailed)
	}
	if store.Writes() != 0 {
		t.Fatalf("writes = %d, want 0", store.Writes())
	}
	if !strings.Contains(out.String(), "No changes.") {
		t.Fatalf("output = %q, want no-changes notice", out.String())
	}
}

func TestEditListRemove(t *testing.T) {
	store := session.NewMemory("1.1.1.1", "2606:4700:4700::1111")
	var out bytes.Buffer

	if err := editList(context.Background(), &out, store, []string{"2606:4700:4700::0:1111"}, removeIPs); err != nil {
		t.Fatalf("editList() error = %v", err)
	}
	got, _ := store.BannedIPs(context.Background())
	if !reflect.DeepEqual(got, []string{"1.1.1.1"}) {
		t.Fatalf("session list = %v, want [1.1.1.1]", got)
	}
}

func TestRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist-shadow-20240101-000000.json")
	data := `{"name":"shadow","created_at":"2024-01-01T00:00:00Z","banned_ips":["9.9.9.9","1.1.1.1","nope","1.1.1.1"]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	store := session.NewMemory("8.8.8.8")

	n, err := restore(context.Background(), store, path)
	if err != nil {
		t.Fatalf("restore() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("restore() = %d, want 2", n)
	}
	got, _ := store.BannedIPs(context.Background())
	if !reflect.DeepEqual(got, []string{"1.1.1.1", "9.9.9.9"}) {
		t.Fatalf("session list = %v, want [1.1.1.1 9.9.9.9]", got)
	}
}

func TestPrintList(t *testing.T) {
	var out bytes.Buffer
	if err := printList(&out, []string{"1.1.1.1", "8.8.8.8"}, staticCountries{"8.8.8.8": "US"}); err != nil {
		t.Fatalf("printList() error = %v", err)
	}
	want := "1.1.1.1  -\n8.8.8.8  US\n"
	if out.String() != want {
		t.Fatalf("printList() = %q, want %q", out.String(), want)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"list", "add", "remove", "backups", "restore", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	for _, flag := range []string{"config", "backend", "log-level", "no-color"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag --%s", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "lazyban ") {
		t.Fatalf("version output = %q", out.String())
	}
}
