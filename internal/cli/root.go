// Package cli is the command-line client: one cobra command per repository
// operation plus serve for the HTTP API.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"
	"task-tracker/internal/storage"

	"github.com/spf13/cobra"
)

type app struct {
	cfgFile string
	now     func() time.Time

	cfg     *config.Config
	logger  *slog.Logger
	store   *storage.InstrumentedStore
	service *services.TaskServiceImpl
}

// NewRootCommand builds the command tree. Each invocation opens the
// configured store once and closes it when the command returns.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{now: time.Now})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktracker",
		Short: "Personal task tracker",
		Long: `tasktracker keeps a personal task list with dated progress notes.

Tasks move through pending, on-progress, completed, cancelled and on-hold.
State lives in one key of the configured store (file, sqlite, postgres or redis).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML config file overlaying the environment")

	root.AddCommand(
		a.serveCommand(),
		a.addCommand(),
		a.listCommand(),
		a.showCommand(),
		a.editCommand(),
		a.statusCommand(),
		a.toggleCommand(),
		a.removeCommand(),
		a.progressCommand(),
		a.statsCommand(),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) open(cmd *cobra.Command, args []string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a.logger = NewLogger(a.cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	a.store, err = storage.Open(cmd.Context(), a.cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", a.cfg.Storage.Driver, err)
	}

	repo := repository.New(a.store,
		repository.WithClock(a.now),
		repository.WithLogger(a.logger),
		repository.WithTimeout(a.cfg.Storage.OpTimeout),
	)
	if err := repo.Open(cmd.Context()); err != nil {
		a.logger.Warn("continuing without durable storage", "error", err)
	}

	a.service = services.NewTaskService(repo, a.cfg.UI.PageSize)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// report prints a warning when a mutation was applied but not written. Any
// other error is returned unchanged.
func (a *app) report(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if repository.IsPersistenceFailure(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return err
}
