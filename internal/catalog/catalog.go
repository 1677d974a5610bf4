// Package catalog provides paginated, read-only views over the projects, flows
// and jobs of an application.
package catalog

import (
	"context"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/models"
	"github.com/rs/zerolog"
)

// Operation names reported to the Recorder.
const (
	OpListProjects = "list_projects"
	OpListFlows    = "list_flows"
	OpListJobs     = "list_jobs"
)

// Request outcomes reported to the Recorder.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Store defines the persistence operations the catalog reader depends on.
type Store interface {
	// LookupApplicationID returns the id of the application whose lower-cased
	// code equals code, or models.ErrApplicationNotFound.
	LookupApplicationID(ctx context.Context, code string) (int, error)
	// ReadTx runs fn inside a single read-only transaction.
	ReadTx(ctx context.Context, fn func(q Queries) error) error
}

// Queries are the reads available inside a catalog transaction.
//
// Each List*Page method returns the requested window together with the total
// number of rows the unpaged query would return.
type Queries interface {
	ListProjectPage(ctx context.Context, appID, offset, limit int) ([]*models.Project, int64, error)
	CountFlowsByGroup(ctx context.Context, appID int, groups []string) (map[string]int64, error)
	CountUngroupedFlows(ctx context.Context, appID int) (int64, error)
	ListFlowPage(ctx context.Context, appID int, group *string, offset, limit int) ([]*models.Flow, int64, error)
	CountJobsByFlow(ctx context.Context, appID int, flowIDs []int64) (map[int64]int64, error)
	ListJobPage(ctx context.Context, appID int, flowID int64, offset, limit int) ([]*models.FlowJob, int64, error)
}

// Recorder observes completed catalog requests.
type Recorder interface {
	ObserveCatalogRequest(operation, outcome string, elapsed time.Duration)
}

// Options tunes page-size handling.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultOptions returns the page-size defaults used by the server.
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: 10,
		MaxPageSize:     1000,
	}
}

// Reader serves paginated catalog views from a Store.
type Reader struct {
	store    Store
	recorder Recorder
	opts     Options
	logger   zerolog.Logger
}

// NewReader creates a new Reader. recorder may be nil.
func NewReader(store Store, opts Options, recorder Recorder, logger zerolog.Logger) *Reader {
	defaults := DefaultOptions()
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = defaults.DefaultPageSize
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = max(defaults.MaxPageSize, opts.DefaultPageSize)
	}
	return &Reader{
		store:    store,
		recorder: recorder,
		opts:     opts,
		logger:   logger.With().Str("component", "catalog_reader").Logger(),
	}
}

// observe reports a finished request. count is the unpaged row count of the result.
func (r *Reader) observe(operation string, start time.Time, count int64, err error) {
	if r.recorder == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case count == 0:
		outcome = OutcomeEmpty
	}
	r.recorder.ObserveCatalogRequest(operation, outcome, time.Since(start))
}
