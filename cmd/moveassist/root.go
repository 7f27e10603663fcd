package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vbonduro/moveassist/internal/config"
	"github.com/vbonduro/moveassist/internal/logging"
)

// app carries what every subcommand needs once the configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), cleanup: func() {}}

	root := &cobra.Command{
		Use:               "moveassist",
		Short:             "Moving-box inventory with photo tagging and room suggestions",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.cleanup() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Path to configuration file")
	flags.String("storage-backend", a.v.GetString("storage.backend"), "Storage backend (sqlite, local, memory)")
	flags.String("db-path", a.v.GetString("db_path"), "SQLite database path")
	flags.String("storage-local-path", a.v.GetString("storage.local_path"), "Directory for the local storage backend")
	flags.String("log-level", a.v.GetString("log.level"), "Log level (debug, info, warn, error)")
	mustBind(a.v, flags, "storage.backend", "storage-backend")
	mustBind(a.v, flags, "db_path", "db-path")
	mustBind(a.v, flags, "storage.local_path", "storage-local-path")
	mustBind(a.v, flags, "log.level", "log-level")

	root.AddCommand(newServeCmd(a), newBoxCmd(a), newRoomsCmd())
	return root
}

func mustBind(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

func (a *app) setup(*cobra.Command, []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	return nil
}
