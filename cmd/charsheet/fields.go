package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"text/tabwriter"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/pdfform"
)

// fieldRow is one line of the fields listing.
type fieldRow struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Key       string  `json:"key,omitempty"` // logical key that resolves to this field
	Value     string  `json:"value,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`
	Multiline bool    `json:"multiline,omitempty"`
	ReadOnly  bool    `json:"readOnly,omitempty"`
}

// fieldsReport is the --json output of the fields command.
type fieldsReport struct {
	Template string     `json:"template"`
	Pages    int        `json:"pages"`
	Strategy string     `json:"strategy"`
	Fields   []fieldRow `json:"fields"`
}

// runFields lists the form fields of a sheet template and the logical key
// each one is filled from.
func runFields(args []string, env *Environment) error {
	f := &fieldsFlags{}
	positional, err := parseFlags(buildFieldsFlagSet(f), args)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	path := cfg.Template.Path
	switch {
	case f.template != "":
		path = f.template
	case len(positional) > 0:
		path = positional[0]
	}

	report, err := describeTemplate(path, charsheet.DefaultAliasTable)
	if err != nil {
		return withHint(err, cfg)
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printFields(env.Stdout, report)
	return nil
}

// describeTemplate opens path and maps its fields to logical keys.
func describeTemplate(path string, aliases charsheet.FieldAliasTable) (*fieldsReport, error) {
	data, err := charsheet.TemplateFile(path).LoadTemplate(context.Background())
	if err != nil {
		return nil, err
	}
	doc, err := pdfform.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", charsheet.ErrInvalidTemplate, err)
	}
	pages, err := doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", charsheet.ErrInvalidTemplate, err)
	}
	infos, err := doc.Describe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", charsheet.ErrInvalidTemplate, err)
	}

	keyOf := make(map[string]string)
	for _, key := range slices.Sorted(maps.Keys(aliases)) {
		if name, ok := aliases.Resolve(key, doc.Has); ok && keyOf[name] == "" {
			keyOf[name] = key
		}
	}

	report := &fieldsReport{
		Template: path,
		Pages:    pages,
		Strategy: charsheet.FillOverlay.String(),
		Fields:   make([]fieldRow, 0, len(infos)),
	}
	if len(infos) > 0 {
		report.Strategy = charsheet.FillTemplate.String()
	}
	for _, fi := range infos {
		report.Fields = append(report.Fields, fieldRow{
			Name:      fi.Name,
			Type:      fi.Type.String(),
			Key:       keyOf[fi.Name],
			Value:     fi.Value,
			FontSize:  fi.FontSize,
			Multiline: fi.Multiline,
			ReadOnly:  fi.ReadOnly,
		})
	}
	sort.Slice(report.Fields, func(i, j int) bool { return report.Fields[i].Name < report.Fields[j].Name })
	return report, nil
}

// printFields writes the report as an aligned table.
func printFields(w io.Writer, r *fieldsReport) {
	fmt.Fprintf(w, "%s: %d page(s), %d field(s), %s fill\n\n", r.Template, r.Pages, len(r.Fields), r.Strategy)
	if len(r.Fields) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tKEY\tSIZE\tVALUE")
	for _, f := range r.Fields {
		key := f.Key
		if key == "" {
			key = "-"
		}
		size := "auto"
		if f.FontSize > 0 {
			size = fmt.Sprintf("%g", f.FontSize)
		}
		fmt.Fprintf(tw, "%q\t%s\t%s\t%s\t%s\n", f.Name, f.Type, key, size, f.Value)
	}
	_ = tw.Flush()
}
