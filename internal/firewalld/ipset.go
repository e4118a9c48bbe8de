//go:build linux
// +build linux

package firewalld

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"lazyban/internal/validation"
)

type ipsetSettings struct {
	Version     string
	Short       string
	Description string
	Type        string
	Options     map[string]string
	Entries     []string
}

// GetIPSetEntries returns the entries of an ipset from the runtime or the
// permanent configuration.
func (c *Client) GetIPSetEntries(ctx context.Context, name string, permanent bool) ([]string, error) {
	if err := c.checkIPSet(name, false); err != nil {
		return nil, err
	}
	var entries []string
	var err error
	if permanent {
		slog.Debug("fetching ipset entries (permanent)", "ipset", name)
		err = c.callObject(ctx, c.configIPSetObject(name), dbusInterface+".config.ipset.getEntries", &entries)
	} else {
		slog.Debug("fetching ipset entries (runtime)", "ipset", name)
		err = c.call(ctx, dbusInterface+".ipset.getEntries", &entries, name)
	}
	if err != nil {
		return nil, mapIPSetError(err)
	}
	return entries, nil
}

// SetIPSetEntries replaces every entry of an ipset.
func (c *Client) SetIPSetEntries(ctx context.Context, name string, entries []string, permanent bool) error {
	if err := c.checkIPSet(name, true); err != nil {
		return err
	}
	if entries == nil {
		entries = []string{}
	}
	var err error
	if permanent {
		slog.Info("replacing ipset entries (permanent)", "ipset", name, "count", len(entries))
		err = c.callObject(ctx, c.configIPSetObject(name), dbusInterface+".config.ipset.setEntries", nil, entries)
	} else {
		slog.Info("replacing ipset entries (runtime)", "ipset", name, "count", len(entries))
		err = c.call(ctx, dbusInterface+".ipset.setEntries", nil, name, entries)
	}
	if err != nil {
		return mapIPSetError(err)
	}
	return nil
}

// AddIPSetPermanent creates a hash:ip ipset for the given family ("inet" or
// "inet6").
func (c *Client) AddIPSetPermanent(ctx context.Context, name, family string) error {
	if err := c.checkIPSet(name, true); err != nil {
		return err
	}
	slog.Info("adding ipset (permanent)", "ipset", name, "family", family)
	settings := ipsetSettings{
		Short:   name,
		Type:    "hash:ip",
		Options: map[string]string{"family": family},
	}
	var path dbus.ObjectPath
	configObj := c.conn.Object(dbusInterface, dbusConfigPath)
	if err := c.callObject(ctx, configObj, dbusInterface+".config.addIPSet", &path, name, settings); err != nil {
		return mapIPSetError(err)
	}
	return nil
}

func (c *Client) checkIPSet(name string, write bool) error {
	if c.apiVersion == APIv1 {
		return ErrUnsupportedAPI
	}
	if write && c.readOnly {
		return ErrPermissionDenied
	}
	if err := validation.IsValidSetName(name); err != nil {
		return fmt.Errorf("invalid ipset name: %w", err)
	}
	return nil
}

func (c *Client) configIPSetObject(name string) dbus.BusObject {
	path := dbus.ObjectPath(dbusConfigPath + "/ipset/" + name)
	return c.conn.Object(dbusInterface, path)
}

func mapIPSetError(err error) error {
	switch {
	case isPermissionDenied(err):
		return ErrPermissionDenied
	case isInvalidIPSet(err):
		return ErrInvalidIPSet
	default:
		return err
	}
}

func isInvalidIPSet(err error) bool {
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) {
		name := strings.ToLower(dbusErr.Name)
		if strings.Contains(name, "invalid_ipset") || strings.Contains(name, "invalidipset") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_ipset") || strings.Contains(msg, "invalid ipset") || strings.Contains(msg, "invalidipset")
}
