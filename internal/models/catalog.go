package models

import (
	"errors"
	"time"
)

// UngroupedProject is the project name reported for flows without a flow group.
const UngroupedProject = "NA"

// CatalogTimeLayout is the layout used to render flow and job timestamps.
const CatalogTimeLayout = "2006-01-02 15:04:05"

// ErrApplicationNotFound is returned when no application matches a lookup name.
var ErrApplicationNotFound = errors.New("application not found")

// Application is a top-level namespace owning projects and flows.
type Application struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
}

// Project is a named grouping of flows within an application.
type Project struct {
	Name      string  `json:"name"`
	FlowGroup *string `json:"flowGroup"`
	FlowCount int64   `json:"flowCount"`
}

// IsUngrouped reports whether the project stands for flows with no flow group.
func (p *Project) IsUngrouped() bool {
	return p.FlowGroup == nil
}

// Flow is a schedulable unit composed of jobs.
type Flow struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Level    int     `json:"level"`
	Created  *string `json:"created,omitempty"`
	Modified *string `json:"modified,omitempty"`
	JobCount int64   `json:"jobCount"`
}

// Job is a single task within a flow.
type Job struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Version  *int64  `json:"version,omitempty"`
	Created  *string `json:"created,omitempty"`
	Modified *string `json:"modified,omitempty"`
}

// FlowJob is a job row joined with the name of its owning flow.
type FlowJob struct {
	Job
	FlowName string `json:"-"`
}

// Pagination carries the page metadata shared by every catalog page.
type Pagination struct {
	Count        int64 `json:"count"`
	Page         int   `json:"page"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
}

// ProjectPage is one page of projects for an application.
type ProjectPage struct {
	Pagination
	Projects []*Project `json:"projects"`
}

// FlowPage is one page of flows for a project.
type FlowPage struct {
	Pagination
	Flows []*Flow `json:"flows"`
}

// JobPage is one page of jobs for a flow.
type JobPage struct {
	Pagination
	Flow string `json:"flow"`
	Jobs []*Job `json:"jobs"`
}

// UnixTimeString renders a nullable epoch-seconds column. Nil stays nil.
func UnixTimeString(sec *int64) *string {
	if sec == nil {
		return nil
	}
	s := time.Unix(*sec, 0).UTC().Format(CatalogTimeLayout)
	return &s
}
