package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/MacJediWizard/flowcatalog/internal/catalog"
	"github.com/MacJediWizard/flowcatalog/internal/models"
	"github.com/jackc/pgx/v5"
)

var _ catalog.Store = (*DB)(nil)

// Flow predicates shared by the catalog queries. Flows are aliased as f.
const (
	activeFlowPredicate = `(f.is_active IS NULL OR f.is_active = 'Y')`

	// A NULL, blank or literal "NA" group is reported as the NA project.
	ungroupedFlowPredicate = `(COALESCE(TRIM(f.flow_group), '') = '' OR UPPER(TRIM(f.flow_group)) = 'NA')`

	projectNameExpr = `CASE WHEN ` + ungroupedFlowPredicate + ` THEN 'NA' ELSE f.flow_group END`
)

// LookupApplicationID returns the id of the application whose lower-cased
// code equals code.
func (db *DB) LookupApplicationID(ctx context.Context, code string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		SELECT app_id
		FROM cfg_application
		WHERE LOWER(app_code) = $1
	`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrApplicationNotFound
		}
		return 0, fmt.Errorf("get application id: %w", err)
	}
	return id, nil
}

// ReadTx runs fn with catalog queries bound to one read-only transaction.
func (db *DB) ReadTx(ctx context.Context, fn func(q catalog.Queries) error) error {
	return db.readOnlyTx(ctx, func(tx pgx.Tx) error {
		return fn(&catalogQueries{tx: tx})
	})
}

// catalogQueries implements catalog.Queries on a pgx transaction.
type catalogQueries struct {
	tx pgx.Tx
}

// unpagedTotal returns the total row count of a paged query. total comes
// from COUNT(*) OVER () on the returned rows; when the window is past the
// end there are no rows to carry it, so countSQL is run instead.
func (q *catalogQueries) unpagedTotal(ctx context.Context, total int64, n, offset int, countSQL string, args ...any) (int64, error) {
	if n > 0 || offset == 0 {
		return total, nil
	}
	if err := q.tx.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// ListProjectPage returns the distinct project names of every flow of the
// application, active or not, ordered by name.
func (q *catalogQueries) ListProjectPage(ctx context.Context, appID, offset, limit int) ([]*models.Project, int64, error) {
	rows, err := q.tx.Query(ctx, `
		SELECT project_name, COUNT(*) OVER () AS total
		FROM (
			SELECT DISTINCT `+projectNameExpr+` AS project_name
			FROM flow f
			WHERE f.app_id = $1
		) p
		ORDER BY project_name COLLATE "C"
		OFFSET $2 LIMIT $3
	`, appID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	var total int64
	for rows.Next() {
		var name string
		if err := rows.Scan(&name, &total); err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		p := &models.Project{Name: name}
		if name != models.UngroupedProject {
			group := name
			p.FlowGroup = &group
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}

	total, err = q.unpagedTotal(ctx, total, len(projects), offset, `
		SELECT COUNT(DISTINCT `+projectNameExpr+`)
		FROM flow f
		WHERE f.app_id = $1`, appID)
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	return projects, total, nil
}

// CountFlowsByGroup returns the number of active flows per group name.
// Groups without flows are absent from the result.
func (q *catalogQueries) CountFlowsByGroup(ctx context.Context, appID int, groups []string) (map[string]int64, error) {
	rows, err := q.tx.Query(ctx, `
		SELECT f.flow_group, COUNT(*)
		FROM flow f
		WHERE f.app_id = $1 AND f.flow_group = ANY($2) AND `+activeFlowPredicate+`
		GROUP BY f.flow_group
	`, appID, groups)
	if err != nil {
		return nil, fmt.Errorf("count flows by group: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64, len(groups))
	for rows.Next() {
		var group string
		var n int64
		if err := rows.Scan(&group, &n); err != nil {
			return nil, fmt.Errorf("scan flow count: %w", err)
		}
		counts[group] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow counts: %w", err)
	}
	return counts, nil
}

// CountUngroupedFlows returns the number of active flows in the NA project.
func (q *catalogQueries) CountUngroupedFlows(ctx context.Context, appID int) (int64, error) {
	var n int64
	err := q.tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM flow f
		WHERE f.app_id = $1 AND `+ungroupedFlowPredicate+` AND `+activeFlowPredicate,
		appID,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count ungrouped flows: %w", err)
	}
	return n, nil
}

// ListFlowPage returns active flows ordered by id. A nil group selects the
// flows of the NA project.
func (q *catalogQueries) ListFlowPage(ctx context.Context, appID int, group *string, offset, limit int) ([]*models.Flow, int64, error) {
	where := `f.app_id = $1 AND ` + ungroupedFlowPredicate + ` AND ` + activeFlowPredicate
	args := []any{appID}
	if group != nil {
		where = `f.app_id = $1 AND f.flow_group = $2 AND ` + activeFlowPredicate
		args = append(args, *group)
	}
	n := len(args)
	pageArgs := append(append([]any{}, args...), offset, limit)

	rows, err := q.tx.Query(ctx, fmt.Sprintf(`
		SELECT f.flow_id, COALESCE(f.flow_name, ''), COALESCE(f.flow_path, ''), COALESCE(f.flow_level, 0),
		       f.created_time, f.modified_time, COUNT(*) OVER () AS total
		FROM flow f
		WHERE %s
		ORDER BY f.flow_id
		OFFSET $%d LIMIT $%d
	`, where, n+1, n+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var flows []*models.Flow
	var total int64
	for rows.Next() {
		var f models.Flow
		var created, modified *int64
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.Level, &created, &modified, &total); err != nil {
			return nil, 0, fmt.Errorf("scan flow: %w", err)
		}
		f.Created = models.UnixTimeString(created)
		f.Modified = models.UnixTimeString(modified)
		flows = append(flows, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate flows: %w", err)
	}

	total, err = q.unpagedTotal(ctx, total, len(flows), offset,
		`SELECT COUNT(*) FROM flow f WHERE `+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count flows: %w", err)
	}

	return flows, total, nil
}

// CountJobsByFlow returns the number of distinct jobs per flow id. Flows
// without jobs are absent from the result.
func (q *catalogQueries) CountJobsByFlow(ctx context.Context, appID int, flowIDs []int64) (map[int64]int64, error) {
	rows, err := q.tx.Query(ctx, `
		SELECT flow_id, COUNT(DISTINCT job_id)
		FROM flow_job
		WHERE app_id = $1 AND flow_id = ANY($2)
		GROUP BY flow_id
	`, appID, flowIDs)
	if err != nil {
		return nil, fmt.Errorf("count jobs by flow: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(flowIDs))
	for rows.Next() {
		var flowID, n int64
		if err := rows.Scan(&flowID, &n); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		counts[flowID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job counts: %w", err)
	}
	return counts, nil
}

// latestJobs keeps one row per job id: the one with the highest source version.
const latestJobs = `
		SELECT DISTINCT ON (j.job_id)
		       j.job_id, j.last_source_version,
		       COALESCE(j.job_name, '') AS job_name, COALESCE(j.job_path, '') AS job_path,
		       COALESCE(j.job_type, '') AS job_type, j.created_time, j.modified_time,
		       COALESCE(f.flow_name, '') AS flow_name
		FROM flow_job j
		JOIN flow f ON j.app_id = f.app_id AND j.flow_id = f.flow_id
		WHERE j.app_id = $1 AND j.flow_id = $2
		ORDER BY j.job_id, j.last_source_version DESC`

// ListJobPage returns the jobs of a flow, one row per job id carrying its
// latest source version, ordered by job id.
func (q *catalogQueries) ListJobPage(ctx context.Context, appID int, flowID int64, offset, limit int) ([]*models.FlowJob, int64, error) {
	rows, err := q.tx.Query(ctx, `
		SELECT job_id, last_source_version, job_name, job_path, job_type,
		       created_time, modified_time, flow_name, COUNT(*) OVER () AS total
		FROM (`+latestJobs+`) latest
		ORDER BY job_id
		OFFSET $3 LIMIT $4
	`, appID, flowID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.FlowJob
	var total int64
	for rows.Next() {
		var j models.FlowJob
		var version int64
		var created, modified *int64
		if err := rows.Scan(
			&j.ID, &version, &j.Name, &j.Path, &j.Type,
			&created, &modified, &j.FlowName, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		j.Version = &version
		j.Created = models.UnixTimeString(created)
		j.Modified = models.UnixTimeString(modified)
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", err)
	}

	total, err = q.unpagedTotal(ctx, total, len(jobs), offset,
		`SELECT COUNT(*) FROM (`+latestJobs+`) latest`, appID, flowID)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	return jobs, total, nil
}
