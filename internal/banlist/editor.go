// Package banlist holds the in-memory state of the ban list editor: the
// edited sequence, its display order and the modified flag that decides
// whether the session is written on confirmation.
package banlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lazyban/internal/validation"
)

var (
	ErrInvalidIP     = errors.New("invalid IP address")
	ErrAlreadyBanned = errors.New("IP address already banned")
	ErrNotBanned     = errors.New("IP address not banned")
)

// Warning returns the user-facing text for an Add or Remove failure.
func Warning(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIP):
		return "The entered IP address is invalid."
	case errors.Is(err, ErrAlreadyBanned):
		return "The entered IP is already banned."
	case errors.Is(err, ErrNotBanned):
		return "The entered IP is not banned."
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}

// Result is how the editor was closed.
type Result int

const (
	Rejected Result = iota
	Accepted
)

func (r Result) String() string {
	if r == Accepted {
		return "accepted"
	}
	return "rejected"
}

type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Session is the owner of the persistent ban list.
type Session interface {
	BannedIPs(ctx context.Context) ([]string, error)
	SetBannedIPs(ctx context.Context, ips []string) error
}

type Editor struct {
	entries  []string
	modified bool
	order    Order
	filter   string
}

func New(ips []string) *Editor {
	entries := make([]string, len(ips))
	copy(entries, ips)
	return &Editor{entries: entries}
}

// Load reads the current ban list from the session.
func Load(ctx context.Context, s Session) (*Editor, error) {
	ips, err := s.BannedIPs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ban list: %w", err)
	}
	slog.Debug("ban list loaded", "count", len(ips))
	return New(ips), nil
}

func (e *Editor) Modified() bool {
	return e.modified
}

func (e *Editor) Len() int {
	return len(e.entries)
}

// Entries returns the list in insertion order.
func (e *Editor) Entries() []string {
	out := make([]string, len(e.entries))
	copy(out, e.entries)
	return out
}

func (e *Editor) Order() Order {
	return e.order
}

func (e *Editor) SetOrder(o Order) {
	e.order = o
}

func (e *Editor) ToggleOrder() {
	if e.order == Ascending {
		e.order = Descending
		return
	}
	e.order = Ascending
}

func (e *Editor) Filter() string {
	return e.filter
}

func (e *Editor) SetFilter(filter string) {
	e.filter = strings.TrimSpace(filter)
}

// CanAdd reports whether text may be offered to Add.
func (e *Editor) CanAdd(text string) bool {
	return validation.IsValidIP(text)
}

// Add appends the canonical form of text. The list is untouched when text is
// not an address or its canonical form is already present.
func (e *Editor) Add(text string) (string, error) {
	ip, err := validation.CanonicalIP(text)
	if err != nil {
		return "", ErrInvalidIP
	}
	for _, existing := range e.entries {
		if existing == ip {
			return "", ErrAlreadyBanned
		}
	}
	e.entries = append(e.entries, ip)
	e.modified = true
	slog.Debug("ip added", "ip", ip)
	return ip, nil
}

// Delete removes the entries shown at the given display rows and returns how
// many were removed.
func (e *Editor) Delete(rows []int) int {
	view := e.view(true)
	seen := make(map[int]struct{}, len(rows))
	targets := make([]int, 0, len(rows))
	for _, row := range rows {
		if row < 0 || row >= len(view) {
			continue
		}
		idx := view[row]
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		targets = append(targets, idx)
	}
	e.removeIndices(targets)
	e.modified = true
	slog.Debug("ips deleted", "count", len(targets))
	return len(targets)
}

// Remove deletes every entry whose canonical form matches text.
func (e *Editor) Remove(text string) error {
	ip, err := validation.CanonicalIP(text)
	if err != nil {
		return ErrInvalidIP
	}
	targets := make([]int, 0, 1)
	for i, existing := range e.entries {
		canonical, err := validation.CanonicalIP(existing)
		if err != nil {
			canonical = existing
		}
		if canonical == ip {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return ErrNotBanned
	}
	e.removeIndices(targets)
	e.modified = true
	return nil
}

func (e *Editor) removeIndices(indices []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, idx := range indices {
		e.entries = append(e.entries[:idx], e.entries[idx+1:]...)
	}
}

// Rows returns the entries as displayed: sorted and filtered.
func (e *Editor) Rows() []string {
	view := e.view(true)
	rows := make([]string, len(view))
	for i, idx := range view {
		rows[i] = e.entries[idx]
	}
	return rows
}

// Sorted returns every entry in display order, ignoring the filter.
func (e *Editor) Sorted() []string {
	view := e.view(false)
	rows := make([]string, len(view))
	for i, idx := range view {
		rows[i] = e.entries[idx]
	}
	return rows
}

func (e *Editor) view(filtered bool) []int {
	view := make([]int, 0, len(e.entries))
	for i, ip := range e.entries {
		if filtered && e.filter != "" && !strings.Contains(strings.ToLower(ip), strings.ToLower(e.filter)) {
			continue
		}
		view = append(view, i)
	}
	sort.SliceStable(view, func(i, j int) bool {
		a, b := e.entries[view[i]], e.entries[view[j]]
		if e.order == Descending {
			return a > b
		}
		return a < b
	})
	return view
}

// Confirm writes the list back when it was modified. An unmodified editor
// closes as Rejected without touching the session.
func (e *Editor) Confirm(ctx context.Context, s Session) (Result, error) {
	if !e.modified {
		slog.Debug("ban list unchanged, nothing to write")
		return Rejected, nil
	}
	ips := e.Sorted()
	if err := s.SetBannedIPs(ctx, ips); err != nil {
		return Rejected, fmt.Errorf("write ban list: %w", err)
	}
	slog.Info("ban list written", "count", len(ips))
	return Accepted, nil
}

func (e *Editor) Cancel() Result {
	return Rejected
}
