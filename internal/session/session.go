// Package session provides the stores that own the persistent ban list. The
// editor reads the list once when it opens and replaces it wholesale on
// confirmation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lazyban/internal/backup"
)

var ErrUnknownBackend = errors.New("unknown session backend")

type Store interface {
	BannedIPs(ctx context.Context) ([]string, error)
	SetBannedIPs(ctx context.Context, ips []string) error
	Close() error
}

// Memory keeps the ban list in process.
type Memory struct {
	mu     sync.RWMutex
	ips    []string
	writes int
}

func NewMemory(ips ...string) *Memory {
	return &Memory{ips: cloneList(ips)}
}

func (m *Memory) BannedIPs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneList(m.ips), nil
}

func (m *Memory) SetBannedIPs(_ context.Context, ips []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ips = cloneList(ips)
	m.writes++
	return nil
}

// Writes reports how many times the list was replaced.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Close() error {
	return nil
}

type backupStore struct {
	Store
	name string

	mu   sync.Mutex
	done bool
}

// WithBackup snapshots the list held by s before the first replace made
// through the returned store. A failed snapshot aborts the replace.
func WithBackup(s Store, name string) Store {
	return &backupStore{Store: s, name: name}
}

func (b *backupStore) SetBannedIPs(ctx context.Context, ips []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.done {
		current, err := b.Store.BannedIPs(ctx)
		if err != nil {
			return fmt.Errorf("read list for backup: %w", err)
		}
		if _, err := backup.CreateWithDescription(b.name, current, "before edit"); err != nil {
			return fmt.Errorf("backup ban list: %w", err)
		}
		b.done = true
	}
	return b.Store.SetBannedIPs(ctx, ips)
}

func cloneList(ips []string) []string {
	out := make([]string, len(ips))
	copy(out, ips)
	return out
}
