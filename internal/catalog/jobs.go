package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/models"
)

// ListJobs returns one page of the jobs of a flow together with the flow's
// name. project must be non-blank but does not narrow the lookup: jobs are
// addressed by application and flow id alone.
func (r *Reader) ListJobs(ctx context.Context, application, project string, flowID int64, page, pageSize int) (*models.JobPage, error) {
	start := time.Now()
	result, err := r.listJobs(ctx, application, project, flowID, r.pageWindow(page, pageSize))
	var count int64
	if result != nil {
		count = result.Count
	}
	r.observe(OpListJobs, start, count, err)
	return result, err
}

func (r *Reader) listJobs(ctx context.Context, application, project string, flowID int64, w window) (*models.JobPage, error) {
	if strings.TrimSpace(application) == "" || strings.TrimSpace(project) == "" || flowID <= 0 {
		return emptyJobPage(w), nil
	}

	appID, found, err := r.ResolveApplicationID(ctx, application)
	if err != nil {
		return nil, err
	}
	if !found {
		return emptyJobPage(w), nil
	}

	result := emptyJobPage(w)
	err = r.store.ReadTx(ctx, func(q Queries) error {
		rows, total, err := q.ListJobPage(ctx, appID, flowID, w.offset, w.size)
		if err != nil {
			return err
		}

		jobs := make([]*models.Job, 0, len(rows))
		for _, row := range rows {
			if strings.TrimSpace(result.Flow) == "" {
				result.Flow = row.FlowName
			}
			job := row.Job
			jobs = append(jobs, &job)
		}

		result.Pagination = newPagination(total, w)
		result.Jobs = jobs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs for %q flow %d: %w", application, flowID, err)
	}

	r.logger.Debug().
		Str("application", application).
		Int("app_id", appID).
		Int64("flow_id", flowID).
		Int("page", w.page).
		Int("size", w.size).
		Int64("count", result.Count).
		Msg("listed jobs")
	return result, nil
}
