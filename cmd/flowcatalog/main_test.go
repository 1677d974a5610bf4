package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MacJediWizard/flowcatalog/internal/config"
	"github.com/MacJediWizard/flowcatalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMergeSettings(t *testing.T) {
	file := &config.CLIConfig{
		DatabaseURL: "postgres://file@db/catalog",
		PageSize:    20,
		Output:      config.OutputJSON,
	}

	t.Run("file only", func(t *testing.T) {
		got, err := mergeSettings(file, &globalFlags{}, "")
		require.NoError(t, err)
		assert.Equal(t, "postgres://file@db/catalog", got.DatabaseURL)
		assert.Equal(t, 20, got.PageSize)
		assert.Equal(t, config.OutputJSON, got.Output)
	})

	t.Run("env overrides file", func(t *testing.T) {
		got, err := mergeSettings(file, &globalFlags{}, "postgres://env@db/catalog")
		require.NoError(t, err)
		assert.Equal(t, "postgres://env@db/catalog", got.DatabaseURL)
	})

	t.Run("flags override env", func(t *testing.T) {
		flags := &globalFlags{databaseURL: "postgres://flag@db/catalog", output: "TABLE", pageSize: 5}
		got, err := mergeSettings(file, flags, "postgres://env@db/catalog")
		require.NoError(t, err)
		assert.Equal(t, "postgres://flag@db/catalog", got.DatabaseURL)
		assert.Equal(t, config.OutputTable, got.Output)
		assert.Equal(t, 5, got.PageSize)
	})

	t.Run("does not modify file config", func(t *testing.T) {
		_, err := mergeSettings(file, &globalFlags{pageSize: 99}, "")
		require.NoError(t, err)
		assert.Equal(t, 20, file.PageSize)
	})

	t.Run("missing database URL", func(t *testing.T) {
		_, err := mergeSettings(&config.CLIConfig{}, &globalFlags{}, "")
		assert.Error(t, err)
	})

	t.Run("invalid output flag", func(t *testing.T) {
		_, err := mergeSettings(file, &globalFlags{output: "xml"}, "")
		assert.Error(t, err)
	})
}

func TestApplySetting(t *testing.T) {
	cfg := &config.CLIConfig{}

	require.NoError(t, applySetting(cfg, "database_url", "postgres://u:p@db:5432/catalog"))
	require.NoError(t, applySetting(cfg, "page_size", "50"))
	require.NoError(t, applySetting(cfg, "output", "JSON"))

	assert.Equal(t, "postgres://u:p@db:5432/catalog", cfg.DatabaseURL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, config.OutputJSON, cfg.Output)

	assert.Error(t, applySetting(cfg, "database_url", "mysql://db/catalog"))
	assert.Error(t, applySetting(cfg, "page_size", "-1"))
	assert.Error(t, applySetting(cfg, "page_size", "ten"))
	assert.Error(t, applySetting(cfg, "output", "yaml"))
	assert.Error(t, applySetting(cfg, "colour", "red"))
}

func TestRedactDatabaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://catalog:secret@db:5432/catalog", "postgres://catalog:xxxxx@db:5432/catalog"},
		{"postgres://catalog@db/catalog", "postgres://catalog@db/catalog"},
		{"postgres://db/catalog", "postgres://db/catalog"},
		{"postgres://catalog:secret@db:port/catalog", unparseableURL},
	}
	for _, tt := range tests {
		got := redactDatabaseURL(tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, "secret")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	root := newRootCmd()
	root.SetArgs([]string{"--config", path, "config", "set", "database_url", "postgres://catalog:secret@db/catalog"})
	root.SetOut(&bytes.Buffer{})
	require.NoError(t, root.Execute())

	var out bytes.Buffer
	root = newRootCmd()
	root.SetArgs([]string{"--config", path, "config", "show"})
	root.SetOut(&out)
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "postgres://catalog:xxxxx@db/catalog")
	assert.NotContains(t, out.String(), "secret")
	assert.Contains(t, out.String(), "Output:       table")
}

func TestRender_JSON(t *testing.T) {
	page := &models.JobPage{
		Pagination: models.Pagination{Count: 1, Page: 1, ItemsPerPage: 10, TotalPages: 1},
		Flow:       "nightly",
		Jobs:       []*models.Job{{ID: 7, Name: "extract", Path: "/etl/extract", Type: "shell"}},
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, config.OutputJSON, page))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "nightly", decoded["flow"])
	assert.EqualValues(t, 10, decoded["itemsPerPage"])
	assert.Len(t, decoded["jobs"], 1)
}

func TestRender_Tables(t *testing.T) {
	t.Run("projects", func(t *testing.T) {
		page := &models.ProjectPage{
			Pagination: models.Pagination{Count: 2, Page: 1, ItemsPerPage: 10, TotalPages: 1},
			Projects: []*models.Project{
				{Name: "billing", FlowGroup: strPtr("billing"), FlowCount: 3},
				{Name: models.UngroupedProject, FlowCount: 1},
			},
		}
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputTable, page))

		lines := strings.Split(buf.String(), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "NAME"))
		assert.Contains(t, lines[2], "billing")
		assert.Contains(t, lines[3], "NA")
		assert.Contains(t, lines[3], "-")
		assert.Contains(t, buf.String(), "Page 1 of 1 (2 total, 10 per page)")
	})

	t.Run("flows", func(t *testing.T) {
		page := &models.FlowPage{
			Pagination: models.Pagination{Count: 11, Page: 2, ItemsPerPage: 10, TotalPages: 2},
			Flows: []*models.Flow{
				{ID: 42, Name: "nightly", Path: "/etl", Level: 1, JobCount: 4, Modified: strPtr("2024-01-02 03:04:05")},
			},
		}
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputTable, page))
		assert.Contains(t, buf.String(), "nightly")
		assert.Contains(t, buf.String(), "2024-01-02 03:04:05")
		assert.Contains(t, buf.String(), "Page 2 of 2 (11 total, 10 per page)")
	})

	t.Run("jobs", func(t *testing.T) {
		v := int64(3)
		page := &models.JobPage{
			Pagination: models.Pagination{Count: 1, Page: 1, ItemsPerPage: 10, TotalPages: 1},
			Flow:       "nightly",
			Jobs:       []*models.Job{{ID: 7, Name: "extract", Type: "shell", Version: &v}},
		}
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputTable, page))
		assert.True(t, strings.HasPrefix(buf.String(), "Flow: nightly"))
		assert.Contains(t, buf.String(), "extract")
	})

	t.Run("empty page", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, config.OutputTable, &models.FlowPage{Flows: []*models.Flow{}}))
		assert.Equal(t, "No flows found.\n", buf.String())
	})

	t.Run("unsupported value", func(t *testing.T) {
		assert.Error(t, render(&bytes.Buffer{}, config.OutputTable, 42))
	})
}
