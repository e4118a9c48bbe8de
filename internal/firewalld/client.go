//go:build linux
// +build linux

// Package firewalld stores ban lists in firewalld ipsets over the system
// D-Bus.
package firewalld

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusInterface  = "org.fedoraproject.FirewallD1"
	dbusPath       = "/org/fedoraproject/FirewallD1"
	dbusConfigPath = "/org/fedoraproject/FirewallD1/config"
	dbusBusPath    = "/org/freedesktop/DBus"
	dbusBusName    = "org.freedesktop.DBus"

	dbusTimeout    = 5 * time.Second
	dbusMinCallGap = 20 * time.Millisecond
)

var (
	ErrNotRunning       = errors.New("firewalld service is not running")
	ErrPermissionDenied = errors.New("permission denied (try sudo)")
	ErrUnsupportedAPI   = errors.New("firewalld version not supported")
	ErrInvalidIPSet     = errors.New("ipset does not exist")
)

type APIVersion int

const (
	APIUnknown APIVersion = iota
	APIv1
	APIv2
)

func (v APIVersion) String() string {
	switch v {
	case APIv1:
		return "v1 (firewalld 0.x)"
	case APIv2:
		return "v2 (firewalld 1.x+)"
	default:
		return "unknown"
	}
}

type Client struct {
	conn       *dbus.Conn
	obj        dbus.BusObject
	version    string
	apiVersion APIVersion
	readOnly   bool

	mu           sync.Mutex
	lastDBusCall time.Time
}

func NewClient(ctx context.Context) (*Client, error) {
	slog.Debug("connecting to system bus")

	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	client := &Client{
		conn: conn,
		obj:  conn.Object(dbusInterface, dbusPath),
	}

	var hasOwner bool
	busObj := conn.Object(dbusBusName, dbusBusPath)
	if err := client.callObject(ctx, busObj, "org.freedesktop.DBus.NameHasOwner", &hasOwner, dbusInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("check firewalld owner: %w", err)
	}
	if !hasOwner {
		conn.Close()
		return nil, ErrNotRunning
	}

	if err := client.detectVersion(ctx); err != nil {
		slog.Warn("version detection failed", "error", err)
	}
	if err := client.detectPermissions(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Version() string {
	return c.version
}

func (c *Client) APIVersion() APIVersion {
	return c.apiVersion
}

func (c *Client) ReadOnly() bool {
	return c.readOnly
}

func (c *Client) detectVersion(ctx context.Context) error {
	var v dbus.Variant
	if err := c.call(ctx, "org.freedesktop.DBus.Properties.Get", &v, dbusInterface, "version"); err != nil {
		return fmt.Errorf("failed to detect firewalld version: %w", err)
	}
	version, ok := v.Value().(string)
	if !ok || version == "" {
		return fmt.Errorf("invalid version value: %v", v.Value())
	}

	c.version = version
	c.apiVersion = parseVersion(version)
	if c.apiVersion == APIUnknown {
		slog.Warn("unknown firewalld version, falling back to v2 API", "version", version)
		c.apiVersion = APIv2
	}
	slog.Info("firewalld detected", "version", version, "api", c.apiVersion)
	return nil
}

func parseVersion(version string) APIVersion {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil {
		return APIUnknown
	}
	if n < 1 {
		return APIv1
	}
	return APIv2
}

func (c *Client) detectPermissions(ctx context.Context) error {
	slog.Debug("checking permissions")
	if err := c.call(ctx, dbusInterface+".authorizeAll", nil); err != nil {
		if isPermissionDenied(err) {
			c.readOnly = true
			slog.Warn("read-only mode enabled", "error", err)
			return nil
		}
		return err
	}
	c.readOnly = false
	return nil
}

func isPermissionDenied(err error) bool {
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) {
		switch dbusErr.Name {
		case "org.freedesktop.DBus.Error.AccessDenied",
			"org.fedoraproject.FirewallD1.AccessDenied",
			"org.fedoraproject.FirewallD1.NotAuthorized",
			"org.fedoraproject.FirewallD1.Error.AccessDenied",
			"org.fedoraproject.FirewallD1.Error.NotAuthorized":
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "accessdenied") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "not authorized") ||
		strings.Contains(msg, "notauthorized")
}

func (c *Client) nextDBusDelay(now time.Time) time.Duration {
	if c.lastDBusCall.IsZero() {
		return 0
	}
	elapsed := now.Sub(c.lastDBusCall)
	if elapsed >= dbusMinCallGap {
		return 0
	}
	return dbusMinCallGap - elapsed
}

// waitDBusRateLimit spaces consecutive calls so a large ipset rewrite does
// not flood firewalld.
func (c *Client) waitDBusRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if delay := c.nextDBusDelay(time.Now()); delay > 0 {
		time.Sleep(delay)
	}
	c.lastDBusCall = time.Now()
}

func (c *Client) call(ctx context.Context, method string, out any, args ...any) error {
	return c.callObject(ctx, c.obj, method, out, args...)
}

func (c *Client) callObject(ctx context.Context, obj dbus.BusObject, method string, out any, args ...any) error {
	slog.Debug("dbus call", "method", method, "args", args)
	c.waitDBusRateLimit()

	ctx, cancel := context.WithTimeout(ctx, dbusTimeout)
	defer cancel()

	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		slog.Error("dbus call failed", "method", method, "error", call.Err)
		return fmt.Errorf("dbus %s: %w", method, call.Err)
	}
	if out == nil {
		return nil
	}
	if err := call.Store(out); err != nil {
		slog.Error("dbus store failed", "method", method, "error", err)
		return fmt.Errorf("dbus store %s: %w", method, err)
	}
	return nil
}
