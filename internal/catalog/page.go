package catalog

import (
	"math"

	"github.com/MacJediWizard/flowcatalog/internal/models"
)

// window is a normalized page request.
type window struct {
	page   int
	size   int
	offset int
}

// pageWindow clamps page to at least 1 and size into [1, MaxPageSize],
// substituting the default size for non-positive values. page is capped so
// that the offset fits in an int.
func (r *Reader) pageWindow(page, size int) window {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = r.opts.DefaultPageSize
	}
	if size > r.opts.MaxPageSize {
		size = r.opts.MaxPageSize
	}
	page = min(page, math.MaxInt/size)
	return window{page: page, size: size, offset: (page - 1) * size}
}

// totalPages is ceil(count/size), and 0 when there are no rows.
func totalPages(count int64, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return int((count + int64(size) - 1) / int64(size))
}

func newPagination(count int64, w window) models.Pagination {
	return models.Pagination{
		Count:        count,
		Page:         w.page,
		ItemsPerPage: w.size,
		TotalPages:   totalPages(count, w.size),
	}
}

// emptyPagination is the metadata of every zero-filled result.
func emptyPagination(w window) models.Pagination {
	return newPagination(0, w)
}

func emptyProjectPage(w window) *models.ProjectPage {
	return &models.ProjectPage{Pagination: emptyPagination(w), Projects: []*models.Project{}}
}

func emptyFlowPage(w window) *models.FlowPage {
	return &models.FlowPage{Pagination: emptyPagination(w), Flows: []*models.Flow{}}
}

func emptyJobPage(w window) *models.JobPage {
	return &models.JobPage{Pagination: emptyPagination(w), Jobs: []*models.Job{}}
}
