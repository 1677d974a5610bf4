package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/models"
)

// ListFlows returns one page of the active flows of a project, each with its
// job count. The project "NA" (any case) selects flows without a flow group.
// Blank arguments or an unknown application yield an empty page.
func (r *Reader) ListFlows(ctx context.Context, application, project string, page, pageSize int) (*models.FlowPage, error) {
	start := time.Now()
	result, err := r.listFlows(ctx, application, project, r.pageWindow(page, pageSize))
	var count int64
	if result != nil {
		count = result.Count
	}
	r.observe(OpListFlows, start, count, err)
	return result, err
}

func (r *Reader) listFlows(ctx context.Context, application, project string, w window) (*models.FlowPage, error) {
	if strings.TrimSpace(application) == "" || strings.TrimSpace(project) == "" {
		return emptyFlowPage(w), nil
	}

	appID, found, err := r.ResolveApplicationID(ctx, application)
	if err != nil {
		return nil, err
	}
	if !found {
		return emptyFlowPage(w), nil
	}

	var group *string
	if !strings.EqualFold(strings.TrimSpace(project), models.UngroupedProject) {
		group = &project
	}

	result := emptyFlowPage(w)
	err = r.store.ReadTx(ctx, func(q Queries) error {
		flows, total, err := q.ListFlowPage(ctx, appID, group, w.offset, w.size)
		if err != nil {
			return err
		}
		if err := r.fillJobCounts(ctx, q, appID, flows); err != nil {
			return err
		}

		result.Pagination = newPagination(total, w)
		if len(flows) > 0 {
			result.Flows = flows
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list flows for %q/%q: %w", application, project, err)
	}

	r.logger.Debug().
		Str("application", application).
		Str("project", project).
		Int("app_id", appID).
		Int("page", w.page).
		Int("size", w.size).
		Int64("count", result.Count).
		Msg("listed flows")
	return result, nil
}

// fillJobCounts sets JobCount on every flow with a non-zero id using one
// aggregate query for the whole page.
func (r *Reader) fillJobCounts(ctx context.Context, q Queries, appID int, flows []*models.Flow) error {
	ids := make([]int64, 0, len(flows))
	for _, f := range flows {
		if f.ID != 0 {
			ids = append(ids, f.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	counts, err := q.CountJobsByFlow(ctx, appID, ids)
	if err != nil {
		return fmt.Errorf("count jobs by flow: %w", err)
	}

	for _, f := range flows {
		if f.ID == 0 {
			continue
		}
		n, ok := counts[f.ID]
		if !ok {
			r.logger.Debug().Int("app_id", appID).Int64("flow_id", f.ID).Msg("no job count for flow")
		}
		f.JobCount = n
	}
	return nil
}
