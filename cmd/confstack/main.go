// Package main implements the confstack command line interface: it resolves,
// inspects and mutates a project's layered settings from the terminal.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/confstack/confstack/internal/config"
	"github.com/confstack/confstack/internal/maputil"
	"github.com/confstack/confstack/internal/platform/logger"
	"github.com/confstack/confstack/internal/platform/postgres"
	"github.com/confstack/confstack/internal/project"
	"github.com/confstack/confstack/internal/settings"
	"github.com/confstack/confstack/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "confstack",
		Short:         "Resolve and manage layered project settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(getCmd(), setCmd(), unsetCmd(), resetCmd(), listCmd(), envCmd())
	return root
}

// initService loads runtime configuration, sets up logging and wires a
// settings service for the project the process runs in. The returned cleanup
// closes the database connection if one was opened.
func initService() (*settings.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.Setup(cfg.Server.LogLevel)

	p, err := project.Find(cfg.Project.Dir)
	if err != nil {
		return nil, nil, err
	}

	dotenvPath := p.DotenvFile()
	if cfg.Project.DotenvFile != "" {
		dotenvPath = cfg.Project.DotenvFile
		if !filepath.IsAbs(dotenvPath) {
			dotenvPath = filepath.Join(p.Root(), dotenvPath)
		}
	}

	opts := []settings.Option{settings.WithDotenvFile(dotenvPath)}
	cleanup := func() {}

	if cfg.Database.URL != "" {
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening settings database: %w", err)
		}
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrating settings database: %w", err)
		}
		opts = append(opts, settings.WithDB(db))
		cleanup = func() { db.Close() }
	}

	return settings.New(project.NewSettings(p), opts...), cleanup, nil
}

func storeFlag(cmd *cobra.Command, defaultName string) *string {
	return cmd.Flags().String("store", defaultName, "settings store to operate on")
}

func getCmd() *cobra.Command {
	var unredacted bool
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a setting's effective value and its source",
		Args:  cobra.ExactArgs(1),
	}
	storeName := storeFlag(cmd, store.Auto.String())
	cmd.Flags().BoolVar(&unredacted, "unredacted", false, "print sensitive values in the clear")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(*storeName)
		if err != nil {
			return err
		}
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		value, metadata, err := svc.GetWithMetadata(cmd.Context(), args[0], settings.GetOptions{
			Source:   kind,
			Redacted: !unredacted,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%v\t(source: %s)\n", value, metadata.Source)
		return nil
	}
	return cmd
}

func setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Write a setting to a store",
		Args:  cobra.ExactArgs(2),
	}
	storeName := storeFlag(cmd, store.ProjectFile.String())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(*storeName)
		if err != nil {
			return err
		}
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		value, metadata, err := svc.SetWithMetadata(cmd.Context(), settings.Path(args[0]), args[1], kind)
		if err != nil {
			return err
		}
		if metadata.Redacted {
			fmt.Fprintf(cmd.OutOrStdout(), "Ignored redacted placeholder for %s\n", args[0])
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", args[0], value, metadata.Store)
		return nil
	}
	return cmd
}

func unsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <name>",
		Short: "Remove a setting from a store",
		Args:  cobra.ExactArgs(1),
	}
	storeName := storeFlag(cmd, store.ProjectFile.String())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(*storeName)
		if err != nil {
			return err
		}
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := svc.Unset(cmd.Context(), settings.Path(args[0]), kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s in %s\n", args[0], kind)
		return nil
	}
	return cmd
}

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every setting held by a store",
		Args:  cobra.NoArgs,
	}
	storeName := storeFlag(cmd, store.ProjectFile.String())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		kind, err := store.ParseKind(*storeName)
		if err != nil {
			return err
		}
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := svc.Reset(cmd.Context(), kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", kind)
		return nil
	}
	return cmd
}

func listCmd() *cobra.Command {
	var unredacted bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every setting with its effective value and source",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&unredacted, "unredacted", false, "print sensitive values in the clear")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		resolved, err := svc.ConfigWithMetadata(cmd.Context(), settings.ConfigOptions{
			Redacted: !unredacted,
		})
		if err != nil {
			return err
		}

		for _, name := range maputil.SortedKeys(resolved) {
			entry := resolved[name]
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\t(source: %s)\n",
				name, entry.Value, entry.Metadata.Source)
		}
		return nil
	}
	return cmd
}

func envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Render the resolved settings as environment variables",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := initService()
		if err != nil {
			return err
		}
		defer cleanup()

		env, err := svc.AsEnv(cmd.Context(), settings.ConfigOptions{Redacted: false})
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(env))
		for key := range env {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, env[key])
		}
		return nil
	}
	return cmd
}
