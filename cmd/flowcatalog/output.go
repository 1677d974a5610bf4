package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MacJediWizard/flowcatalog/internal/config"
	"github.com/MacJediWizard/flowcatalog/internal/models"
)

// render writes a catalog page in the requested format.
func render(w io.Writer, format string, v any) error {
	if format == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch page := v.(type) {
	case *models.ProjectPage:
		return renderProjects(w, page)
	case *models.FlowPage:
		return renderFlows(w, page)
	case *models.JobPage:
		return renderJobs(w, page)
	default:
		return fmt.Errorf("cannot render %T as a table", v)
	}
}

func renderProjects(w io.Writer, page *models.ProjectPage) error {
	if len(page.Projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	writeRow(tw, "NAME", "FLOW GROUP", "FLOWS")
	writeRow(tw, "----", "----------", "-----")
	for _, p := range page.Projects {
		group := "-"
		if p.FlowGroup != nil {
			group = *p.FlowGroup
		}
		writeRow(tw, p.Name, group, strconv.FormatInt(p.FlowCount, 10))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeFooter(w, page.Pagination)
	return nil
}

func renderFlows(w io.Writer, page *models.FlowPage) error {
	if len(page.Flows) == 0 {
		fmt.Fprintln(w, "No flows found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	writeRow(tw, "ID", "NAME", "PATH", "LEVEL", "JOBS", "MODIFIED")
	writeRow(tw, "--", "----", "----", "-----", "----", "--------")
	for _, f := range page.Flows {
		writeRow(tw,
			strconv.FormatInt(f.ID, 10),
			f.Name,
			f.Path,
			strconv.Itoa(f.Level),
			strconv.FormatInt(f.JobCount, 10),
			orDash(f.Modified),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeFooter(w, page.Pagination)
	return nil
}

func renderJobs(w io.Writer, page *models.JobPage) error {
	if len(page.Jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return nil
	}
	fmt.Fprintf(w, "Flow: %s\n\n", page.Flow)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	writeRow(tw, "ID", "NAME", "TYPE", "VERSION", "PATH", "MODIFIED")
	writeRow(tw, "--", "----", "----", "-------", "----", "--------")
	for _, j := range page.Jobs {
		version := "-"
		if j.Version != nil {
			version = strconv.FormatInt(*j.Version, 10)
		}
		writeRow(tw,
			strconv.FormatInt(j.ID, 10),
			j.Name,
			j.Type,
			version,
			j.Path,
			orDash(j.Modified),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeFooter(w, page.Pagination)
	return nil
}

func writeRow(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func writeFooter(w io.Writer, p models.Pagination) {
	fmt.Fprintf(w, "\nPage %d of %d (%d total, %d per page)\n", p.Page, p.TotalPages, p.Count, p.ItemsPerPage)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
