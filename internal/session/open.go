package session

import (
	"context"
	"fmt"
	"log/slog"

	"lazyban/internal/config"
)

// Open returns the store selected by cfg.Session.Backend, wrapped with a
// pre-write backup when cfg.Session.Backup is set.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	store, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("session opened", "backend", cfg.Session.Backend, "name", cfg.Session.Name)
	if cfg.Session.Backup {
		return WithBackup(store, cfg.Session.Name), nil
	}
	return store, nil
}

func openBackend(ctx context.Context, cfg config.Config) (Store, error) {
	sc := cfg.Session
	switch sc.Backend {
	case "json", "":
		path, err := cfg.SessionPath()
		if err != nil {
			return nil, err
		}
		return NewJSONStore(path)
	case "sqlite":
		path, err := cfg.SessionPath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(ctx, path)
	case "redis":
		return NewRedisStore(ctx, sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, sc.Redis.Key)
	case "firewalld":
		return NewFirewalldStore(ctx, sc.Firewalld.IPSet, sc.Firewalld.IPSet6, sc.Firewalld.Permanent)
	default:
		return nil, fmt.Errorf("%w: %q (use json|sqlite|redis|firewalld)", ErrUnknownBackend, sc.Backend)
	}
}
