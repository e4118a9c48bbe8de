//go:build linux
// +build linux

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lazyban/internal/firewalld"
	"lazyban/internal/validation"
)

var ErrNoIPv6Set = errors.New("list contains IPv6 addresses but no inet6 ipset is configured")

type ipsetClient interface {
	GetIPSetEntries(ctx context.Context, name string, permanent bool) ([]string, error)
	SetIPSetEntries(ctx context.Context, name string, entries []string, permanent bool) error
	AddIPSetPermanent(ctx context.Context, name, family string) error
	Close() error
}

// FirewalldStore keeps the ban list in firewalld ipsets. hash:ip sets hold one
// address family, so IPv6 entries go to a second set.
type FirewalldStore struct {
	client    ipsetClient
	ipset     string
	ipset6    string
	permanent bool
}

func NewFirewalldStore(ctx context.Context, ipset, ipset6 string, permanent bool) (*FirewalldStore, error) {
	client, err := firewalld.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("firewalld session", "version", client.Version(), "api", client.APIVersion().String(), "read_only", client.ReadOnly())
	return &FirewalldStore{client: client, ipset: ipset, ipset6: ipset6, permanent: permanent}, nil
}

// BannedIPs reads both sets. A set that does not exist yet reads as empty.
func (s *FirewalldStore) BannedIPs(ctx context.Context) ([]string, error) {
	ips, err := s.entries(ctx, s.ipset)
	if err != nil {
		return nil, err
	}
	if s.ipset6 == "" {
		return ips, nil
	}
	ips6, err := s.entries(ctx, s.ipset6)
	if err != nil {
		return nil, err
	}
	return append(ips, ips6...), nil
}

func (s *FirewalldStore) entries(ctx context.Context, name string) ([]string, error) {
	ips, err := s.client.GetIPSetEntries(ctx, name, s.permanent)
	if errors.Is(err, firewalld.ErrInvalidIPSet) {
		slog.Debug("ipset missing, treating as empty", "ipset", name)
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ipset %s: %w", name, err)
	}
	return ips, nil
}

// replace writes entries to name, creating the set in the permanent
// configuration when it does not exist.
func (s *FirewalldStore) replace(ctx context.Context, name, family string, entries []string) error {
	err := s.client.SetIPSetEntries(ctx, name, entries, s.permanent)
	if errors.Is(err, firewalld.ErrInvalidIPSet) && s.permanent {
		if err := s.client.AddIPSetPermanent(ctx, name, family); err != nil {
			return fmt.Errorf("create ipset %s: %w", name, err)
		}
		err = s.client.SetIPSetEntries(ctx, name, entries, s.permanent)
	}
	if err != nil {
		return fmt.Errorf("ipset %s: %w", name, err)
	}
	return nil
}

func (s *FirewalldStore) SetBannedIPs(ctx context.Context, ips []string) error {
	v4 := make([]string, 0, len(ips))
	v6 := make([]string, 0)
	for _, ip := range ips {
		if validation.IsIPv4(ip) {
			v4 = append(v4, ip)
		} else {
			v6 = append(v6, ip)
		}
	}
	if len(v6) > 0 && s.ipset6 == "" {
		return ErrNoIPv6Set
	}
	if err := s.replace(ctx, s.ipset, "inet", v4); err != nil {
		return err
	}
	if s.ipset6 == "" {
		return nil
	}
	return s.replace(ctx, s.ipset6, "inet6", v6)
}

func (s *FirewalldStore) Close() error {
	return s.client.Close()
}
