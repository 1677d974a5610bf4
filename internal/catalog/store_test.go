package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MacJediWizard/flowcatalog/internal/models"
)

type memFlow struct {
	appID    int
	id       int64
	name     string
	path     string
	level    int
	group    *string
	active   *bool
	created  *int64
	modified *int64
}

type memJob struct {
	appID    int
	flowID   int64
	id       int64
	name     string
	path     string
	jobType  string
	version  int64
	created  *int64
	modified *int64
}

// memStore is an in-memory Store with the same filtering, ordering and
// counting rules as the Postgres queries.
type memStore struct {
	apps  map[string]int
	flows []memFlow
	jobs  []memJob

	lookupErr error
	queryErr  error
	txCount   int
}

func newMemStore() *memStore {
	return &memStore{apps: map[string]int{}}
}

func (s *memStore) LookupApplicationID(_ context.Context, code string) (int, error) {
	if s.lookupErr != nil {
		return 0, s.lookupErr
	}
	for stored, id := range s.apps {
		if strings.ToLower(stored) == code {
			return id, nil
		}
	}
	return 0, models.ErrApplicationNotFound
}

func (s *memStore) ReadTx(ctx context.Context, fn func(q Queries) error) error {
	s.txCount++
	return fn(memQueries{s: s})
}

type memQueries struct {
	s *memStore
}

func memProjectName(group *string) string {
	if group == nil {
		return models.UngroupedProject
	}
	trimmed := strings.TrimSpace(*group)
	if trimmed == "" || strings.ToUpper(trimmed) == models.UngroupedProject {
		return models.UngroupedProject
	}
	return *group
}

func memEligible(f memFlow) bool {
	return f.active == nil || *f.active
}

func memWindow[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func (q memQueries) ListProjectPage(_ context.Context, appID, offset, limit int) ([]*models.Project, int64, error) {
	if q.s.queryErr != nil {
		return nil, 0, q.s.queryErr
	}
	seen := map[string]bool{}
	var names []string
	for _, f := range q.s.flows {
		if f.appID != appID {
			continue
		}
		name := memProjectName(f.group)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var projects []*models.Project
	for _, name := range memWindow(names, offset, limit) {
		p := &models.Project{Name: name}
		if name != models.UngroupedProject {
			g := name
			p.FlowGroup = &g
		}
		projects = append(projects, p)
	}
	return projects, int64(len(names)), nil
}

func (q memQueries) CountFlowsByGroup(_ context.Context, appID int, groups []string) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, f := range q.s.flows {
		if f.appID != appID || !memEligible(f) || f.group == nil {
			continue
		}
		for _, g := range groups {
			if *f.group == g {
				counts[g]++
			}
		}
	}
	return counts, nil
}

func (q memQueries) CountUngroupedFlows(_ context.Context, appID int) (int64, error) {
	var n int64
	for _, f := range q.s.flows {
		if f.appID == appID && memEligible(f) && memProjectName(f.group) == models.UngroupedProject {
			n++
		}
	}
	return n, nil
}

func (q memQueries) ListFlowPage(_ context.Context, appID int, group *string, offset, limit int) ([]*models.Flow, int64, error) {
	if q.s.queryErr != nil {
		return nil, 0, q.s.queryErr
	}
	var matched []memFlow
	for _, f := range q.s.flows {
		if f.appID != appID || !memEligible(f) {
			continue
		}
		if group == nil {
			if memProjectName(f.group) != models.UngroupedProject {
				continue
			}
		} else if f.group == nil || *f.group != *group {
			continue
		}
		matched = append(matched, f)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	var flows []*models.Flow
	for _, f := range memWindow(matched, offset, limit) {
		flows = append(flows, &models.Flow{
			ID:       f.id,
			Name:     f.name,
			Path:     f.path,
			Level:    f.level,
			Created:  models.UnixTimeString(f.created),
			Modified: models.UnixTimeString(f.modified),
		})
	}
	return flows, int64(len(matched)), nil
}

func (q memQueries) CountJobsByFlow(_ context.Context, appID int, flowIDs []int64) (map[int64]int64, error) {
	wanted := map[int64]bool{}
	for _, id := range flowIDs {
		wanted[id] = true
	}
	distinct := map[int64]map[int64]bool{}
	for _, j := range q.s.jobs {
		if j.appID != appID || !wanted[j.flowID] {
			continue
		}
		if distinct[j.flowID] == nil {
			distinct[j.flowID] = map[int64]bool{}
		}
		distinct[j.flowID][j.id] = true
	}
	counts := map[int64]int64{}
	for flowID, ids := range distinct {
		counts[flowID] = int64(len(ids))
	}
	return counts, nil
}

func (q memQueries) ListJobPage(_ context.Context, appID int, flowID int64, offset, limit int) ([]*models.FlowJob, int64, error) {
	if q.s.queryErr != nil {
		return nil, 0, q.s.queryErr
	}
	var flowName string
	flowFound := false
	for _, f := range q.s.flows {
		if f.appID == appID && f.id == flowID {
			flowName = f.name
			flowFound = true
			break
		}
	}
	if !flowFound {
		return nil, 0, nil
	}

	latest := map[int64]memJob{}
	for _, j := range q.s.jobs {
		if j.appID != appID || j.flowID != flowID {
			continue
		}
		if cur, ok := latest[j.id]; !ok || j.version > cur.version {
			latest[j.id] = j
		}
	}
	grouped := make([]memJob, 0, len(latest))
	for _, j := range latest {
		grouped = append(grouped, j)
	}
	sort.Slice(grouped, func(i, k int) bool { return grouped[i].id < grouped[k].id })

	var rows []*models.FlowJob
	for _, j := range memWindow(grouped, offset, limit) {
		version := j.version
		rows = append(rows, &models.FlowJob{
			Job: models.Job{
				ID:       j.id,
				Name:     j.name,
				Path:     j.path,
				Type:     j.jobType,
				Version:  &version,
				Created:  models.UnixTimeString(j.created),
				Modified: models.UnixTimeString(j.modified),
			},
			FlowName: flowName,
		})
	}
	return rows, int64(len(grouped)), nil
}

type recordedRequest struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *fakeRecorder) ObserveCatalogRequest(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{operation: operation, outcome: outcome})
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func int64Ptr(n int64) *int64 { return &n }
