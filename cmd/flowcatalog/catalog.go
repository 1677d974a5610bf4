package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/catalog"
	"github.com/MacJediWizard/flowcatalog/internal/config"
	"github.com/MacJediWizard/flowcatalog/internal/db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

// session holds what a catalog command needs to run one query.
type session struct {
	cfg    *config.CLIConfig
	db     *db.DB
	reader *catalog.Reader
}

func (f *globalFlags) open(ctx context.Context) (*session, error) {
	cfg, err := f.settings()
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	dbCfg := db.DefaultConfig(cfg.DatabaseURL)
	dbCfg.MaxConns = 2
	dbCfg.MinConns = 0
	database, err := db.New(ctx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	opts := catalog.DefaultOptions()
	if cfg.PageSize > 0 {
		opts.DefaultPageSize = cfg.PageSize
	}

	return &session{
		cfg:    cfg,
		db:     database,
		reader: catalog.NewReader(database, opts, nil, logger),
	}, nil
}

func (s *session) Close() {
	s.db.Close()
}

// runCatalog opens a session, runs fn and renders its result.
func runCatalog(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, r *catalog.Reader) (any, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	s, err := flags.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := fn(ctx, s.reader)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), s.cfg.OutputFormat(), result)
}

func newProjectsCmd(flags *globalFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "projects <application>",
		Short: "List the projects of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, flags, func(ctx context.Context, r *catalog.Reader) (any, error) {
				result, err := r.ListProjects(ctx, args[0], page, flags.pageSize)
				if err != nil {
					return nil, fmt.Errorf("list projects: %w", err)
				}
				return result, nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}

func newFlowsCmd(flags *globalFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "flows <application> <project>",
		Short: "List the flows of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, flags, func(ctx context.Context, r *catalog.Reader) (any, error) {
				result, err := r.ListFlows(ctx, args[0], args[1], page, flags.pageSize)
				if err != nil {
					return nil, fmt.Errorf("list flows: %w", err)
				}
				return result, nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}

func newJobsCmd(flags *globalFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "jobs <application> <project> <flow-id>",
		Short: "List the jobs of a flow",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			flowID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid flow ID %q", args[2])
			}
			return runCatalog(cmd, flags, func(ctx context.Context, r *catalog.Reader) (any, error) {
				result, err := r.ListJobs(ctx, args[0], args[1], flowID, page, flags.pageSize)
				if err != nil {
					return nil, fmt.Errorf("list jobs: %w", err)
				}
				return result, nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}
