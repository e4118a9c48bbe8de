package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"lazyban/internal/backup"
	"lazyban/internal/banlist"
	"lazyban/internal/config"
	"lazyban/internal/geo"
	"lazyban/internal/logger"
	"lazyban/internal/session"
	"lazyban/internal/ui"
	"lazyban/internal/uistate"
	"lazyban/internal/version"

	"github.com/spf13/cobra"
)

// env is what every command needs after startup.
type env struct {
	cfg   config.Config
	store session.Store
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			slog.Warn("close session failed", "error", err)
		}
	}
	_ = logger.Close()
}

func loadConfig(opts *rootOptions) (config.Config, []string, error) {
	var (
		cfg      config.Config
		warnings []string
		err      error
	)
	if opts.configPath != "" {
		cfg, warnings, err = config.LoadFile(opts.configPath)
	} else {
		cfg, warnings, _, _, err = config.Load()
	}
	if err != nil {
		return cfg, nil, err
	}
	if opts.backend != "" {
		cfg.Session.Backend = strings.ToLower(strings.TrimSpace(opts.backend))
	}
	return cfg, warnings, nil
}

func setup(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, warnings, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	level := cfg.Advanced.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if err := logger.Init(level); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}
	store, err := session.Open(ctx, cfg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &env{cfg: cfg, store: store}, nil
}

func sortOrder(cfg config.Config) banlist.Order {
	if cfg.UI.SortOrder == "descending" {
		return banlist.Descending
	}
	return banlist.Ascending
}

func openCountries(cfg config.Config) *geo.Resolver {
	resolver, err := geo.Open(cfg.GeoIP.Database)
	if err != nil {
		slog.Warn("geoip disabled", "error", err)
		return nil
	}
	return resolver
}

func runEditor(ctx context.Context, opts *rootOptions) error {
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer e.close()

	uiOpts := ui.Options{
		NoColor: opts.noColor,
		Order:   sortOrder(e.cfg),
		Title:   fmt.Sprintf("Banned IP addresses (%s)", e.cfg.Session.Name),
	}
	if dir, err := config.Dir(); err == nil {
		uiOpts.StatePath = uistate.DefaultPath(dir)
	}
	if resolver := openCountries(e.cfg); resolver != nil {
		defer resolver.Close()
		uiOpts.Countries = resolver
	}

	result, err := ui.RunWithContext(ctx, e.store, uiOpts)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	slog.Info("editor closed", "result", result)
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the banned addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.close()

			editor, err := banlist.Load(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			editor.SetOrder(sortOrder(e.cfg))
			resolver := openCountries(e.cfg)
			defer resolver.Close()
			return printList(cmd.OutOrStdout(), editor.Rows(), resolver)
		},
	}
}

func printList(w io.Writer, rows []string, countries ui.CountryLookup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ip := range rows {
		cc := countries.Country(ip)
		if cc == "" {
			cc = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", ip, cc)
	}
	return tw.Flush()
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <ip>...",
		Short: "Ban one or more addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.close()
			return editList(cmd.Context(), cmd.OutOrStdout(), e.store, args, addIPs)
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <ip>...",
		Aliases: []string{"rm"},
		Short:   "Unban one or more addresses",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.close()
			return editList(cmd.Context(), cmd.OutOrStdout(), e.store, args, removeIPs)
		},
	}
}

type editFunc func(w io.Writer, editor *banlist.Editor, args []string) error

// editList applies fn to the session list and writes it back through the
// same confirm path as the editor. Per-address failures are reported and the
// rest still apply.
func editList(ctx context.Context, w io.Writer, store banlist.Session, args []string, fn editFunc) error {
	editor, err := banlist.Load(ctx, store)
	if err != nil {
		return err
	}
	editErr := fn(w, editor, args)
	result, err := editor.Confirm(ctx, store)
	if err != nil {
		return err
	}
	if result == banlist.Rejected {
		fmt.Fprintln(w, "No changes.")
	}
	return editErr
}

var errSomeFailed = errors.New("some addresses were not applied")

func addIPs(w io.Writer, editor *banlist.Editor, args []string) error {
	failed := false
	for _, arg := range args {
		ip, err := editor.Add(arg)
		if err != nil {
			fmt.Fprintf(w, "%s: %s\n", arg, banlist.Warning(err))
			failed = true
			continue
		}
		fmt.Fprintf(w, "Banned %s\n", ip)
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

func removeIPs(w io.Writer, editor *banlist.Editor, args []string) error {
	failed := false
	for _, arg := range args {
		if err := editor.Remove(arg); err != nil {
			fmt.Fprintf(w, "%s: %s\n", arg, banlist.Warning(err))
			failed = true
			continue
		}
		fmt.Fprintf(w, "Unbanned %s\n", strings.TrimSpace(arg))
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

func newBackupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List ban list snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			backups, err := backup.List(cfg.Session.Name)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(w, "No backups.")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, b := range backups {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Time.Format("2006-01-02 15:04:05"), b.Path, b.Description)
			}
			return tw.Flush()
		},
	}
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the ban list with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.close()
			n, err := restore(cmd.Context(), e.store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d addresses from %s\n", n, args[0])
			return nil
		},
	}
}

// restore writes the snapshot at path to the session. Entries are
// canonicalized and deduplicated on the way in; invalid ones are skipped.
func restore(ctx context.Context, store banlist.Session, path string) (int, error) {
	ips, err := backup.Load(path)
	if err != nil {
		return 0, err
	}
	editor := banlist.New(nil)
	for _, ip := range ips {
		if _, err := editor.Add(ip); err != nil {
			slog.Warn("skipping snapshot entry", "ip", ip, "error", err)
		}
	}
	rows := editor.Sorted()
	if err := store.SetBannedIPs(ctx, rows); err != nil {
		return 0, fmt.Errorf("write ban list: %w", err)
	}
	slog.Info("ban list restored", "path", path, "count", len(rows))
	return len(rows), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
