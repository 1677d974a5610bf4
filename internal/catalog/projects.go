package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/models"
)

// ListProjects returns one page of the projects of an application, each with
// its active flow count. An unknown application yields an empty page.
func (r *Reader) ListProjects(ctx context.Context, application string, page, pageSize int) (*models.ProjectPage, error) {
	start := time.Now()
	result, err := r.listProjects(ctx, application, r.pageWindow(page, pageSize))
	var count int64
	if result != nil {
		count = result.Count
	}
	r.observe(OpListProjects, start, count, err)
	return result, err
}

func (r *Reader) listProjects(ctx context.Context, application string, w window) (*models.ProjectPage, error) {
	appID, found, err := r.ResolveApplicationID(ctx, application)
	if err != nil {
		return nil, err
	}
	if !found {
		return emptyProjectPage(w), nil
	}

	result := emptyProjectPage(w)
	err = r.store.ReadTx(ctx, func(q Queries) error {
		projects, total, err := q.ListProjectPage(ctx, appID, w.offset, w.size)
		if err != nil {
			return err
		}
		if err := r.fillFlowCounts(ctx, q, appID, projects); err != nil {
			return err
		}

		result.Pagination = newPagination(total, w)
		if len(projects) > 0 {
			result.Projects = projects
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list projects for %q: %w", application, err)
	}

	r.logger.Debug().
		Str("application", application).
		Int("app_id", appID).
		Int("page", w.page).
		Int("size", w.size).
		Int64("count", result.Count).
		Msg("listed projects")
	return result, nil
}

// fillFlowCounts sets FlowCount on every project with at most two aggregate
// queries: one for the named groups on the page and one for the ungrouped flows.
func (r *Reader) fillFlowCounts(ctx context.Context, q Queries, appID int, projects []*models.Project) error {
	var groups []string
	hasUngrouped := false
	for _, p := range projects {
		if p.IsUngrouped() {
			hasUngrouped = true
			continue
		}
		groups = append(groups, *p.FlowGroup)
	}

	counts := map[string]int64{}
	if len(groups) > 0 {
		var err error
		counts, err = q.CountFlowsByGroup(ctx, appID, groups)
		if err != nil {
			return fmt.Errorf("count flows by group: %w", err)
		}
	}

	var ungrouped int64
	if hasUngrouped {
		var err error
		ungrouped, err = q.CountUngroupedFlows(ctx, appID)
		if err != nil {
			return fmt.Errorf("count ungrouped flows: %w", err)
		}
	}

	for _, p := range projects {
		if p.IsUngrouped() {
			p.FlowCount = ungrouped
			continue
		}
		n, ok := counts[*p.FlowGroup]
		if !ok {
			r.logger.Debug().Int("app_id", appID).Str("project", p.Name).Msg("no flow count for project")
		}
		p.FlowCount = n
	}
	return nil
}
