// Package geo annotates addresses with the country from a MaxMind database.
package geo

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Resolver looks up countries. A nil *Resolver is valid and knows nothing.
type Resolver struct {
	db *geoip2.Reader
}

func Open(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	slog.Info("geoip database loaded", "path", path, "type", db.Metadata().DatabaseType)
	return &Resolver{db: db}, nil
}

// Country returns the ISO country code for ip, or "" when unknown.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.db == nil {
		return ""
	}
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return ""
	}
	record, err := r.db.Country(addr)
	if err != nil {
		slog.Debug("geoip lookup failed", "ip", ip, "error", err)
		return ""
	}
	return record.Country.IsoCode
}

func (r *Resolver) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
