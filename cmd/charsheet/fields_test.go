package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/pdfform/pdftest"
)

func TestDescribeTemplate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	report, err := describeTemplate(env.Config.Template.Path, charsheet.DefaultAliasTable)
	if err != nil {
		t.Fatalf("describeTemplate: %v", err)
	}

	if report.Pages != 1 || report.Strategy != "template" {
		t.Errorf("report = %d page(s), %s fill; want 1, template", report.Pages, report.Strategy)
	}

	var names []string
	byName := map[string]fieldRow{}
	for _, f := range report.Fields {
		names = append(names, f.Name)
		byName[f.Name] = f
	}
	if diff := cmp.Diff([]string{"AC", "CharacterName", "Check Box 11", "Notes 1"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name, typ, key string
	}{
		{"AC", "text", "ac"},
		{"CharacterName", "text", "characterName"},
	}
	for _, tt := range tests {
		f := byName[tt.name]
		if f.Type != tt.typ || f.Key != tt.key {
			t.Errorf("%s = %s/%q, want %s/%q", tt.name, f.Type, f.Key, tt.typ, tt.key)
		}
	}
	if got := byName["Check Box 11"].Type; got != "checkbox" {
		t.Errorf("Check Box 11 type = %q, want checkbox", got)
	}
}

func TestDescribeTemplate_Overlay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "blank.pdf", string(pdftest.Blank(t, 2)))

	report, err := describeTemplate(path, charsheet.DefaultAliasTable)
	if err != nil {
		t.Fatalf("describeTemplate: %v", err)
	}
	if report.Pages != 2 || len(report.Fields) != 0 || report.Strategy != "overlay" {
		t.Errorf("report = %+v, want 2 pages, no fields, overlay", report)
	}
}

func TestDescribeTemplate_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	junk := writeTestFile(t, dir, "junk.pdf", "not a pdf")

	if _, err := describeTemplate(filepath.Join(dir, "none.pdf"), nil); !errors.Is(err, charsheet.ErrTemplateNotFound) {
		t.Errorf("missing: error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := describeTemplate(junk, nil); !errors.Is(err, charsheet.ErrInvalidTemplate) {
		t.Errorf("junk: error = %v, want ErrInvalidTemplate", err)
	}
}

func TestRunFields(t *testing.T) {
	t.Parallel()

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := runMain([]string{"charsheet", "fields"}, env.Environment); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, env.stderr)
		}
		out := env.stdout.String()
		for _, want := range []string{"1 page(s), 4 field(s), template fill", "NAME", `"CharacterName"`, "characterName"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := runMain([]string{"charsheet", "fields", "--json"}, env.Environment); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, env.stderr)
		}
		var report fieldsReport
		if err := json.Unmarshal(env.stdout.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, env.stdout)
		}
		if len(report.Fields) != 4 {
			t.Errorf("fields = %d, want 4", len(report.Fields))
		}
	})

	t.Run("positional template", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		path := writeTestFile(t, env.dir, "blank.pdf", string(pdftest.Blank(t, 1)))
		if code := runMain([]string{"charsheet", "fields", path}, env.Environment); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, env.stderr)
		}
		if !strings.Contains(env.stdout.String(), "0 field(s), overlay fill") {
			t.Errorf("output = %q", env.stdout)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		code := runMain([]string{"charsheet", "fields", "-t", filepath.Join(env.dir, "none.pdf")}, env.Environment)
		if code != ExitIO {
			t.Errorf("runMain() = %d, want %d", code, ExitIO)
		}
		if !strings.Contains(env.stderr.String(), "hint:") {
			t.Errorf("stderr = %q, want a hint", env.stderr)
		}
	})
}
