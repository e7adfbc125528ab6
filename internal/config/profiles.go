package config

// profiles.go is the report-type → cleaning-profile table. The discard
// indices, header depth and column selection used to live as inline
// constants scattered per report script; here they are one data table with
// compiled-in defaults and an optional YAML override.

import (
	"fmt"
	"os"

	"github.com/nlconnect/wbsreports/internal/report"
	"gopkg.in/yaml.v3"
)

// DefaultProfiles returns the built-in report profile table, keyed by
// report type.
func DefaultProfiles() map[string]report.Profile {
	return map[string]report.Profile{
		"budget_report": {
			Key:    "budget_report",
			Label:  "Budget Report",
			Format: report.FormatDAT,
			Cleaning: report.CleaningProfile{
				DiscardLines: []int{0, 1, 4, -1},
				HeaderRows:   2,
				Delimiter:    "\t",
				Charset:      "latin1",
			},
			ObjectColumn: "Object",
		},
		"budget_updates": {
			Key:    "budget_updates",
			Label:  "Budget Updates",
			Format: report.FormatDAT,
			Cleaning: report.CleaningProfile{
				DiscardLines: []int{0, 3, -1},
				HeaderRows:   2,
				Delimiter:    "\t",
				Charset:      "latin1",
			},
			ObjectColumn: "Object",
		},
		"budget_variance": {
			Key:    "budget_variance",
			Label:  "Budget Variance",
			Format: report.FormatHTML,
			Cleaning: report.CleaningProfile{
				DiscardLines: []int{0, 1},
				HeaderRows:   2,
				Charset:      "utf-8",
			},
			// The variance export addresses its columns positionally:
			// the first column is the WBS code, the second its
			// description; the trailing row is a grand total.
			CodeColumnIndex: 0,
			DropLastDataRow: true,
		},
	}
}

// LoadProfiles returns the profile table, overlaying the YAML file at path
// (if any) onto the defaults. Profiles in the file replace same-keyed
// defaults and may add new report types.
func LoadProfiles(path string) (map[string]report.Profile, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}

	for _, p := range file.Reports {
		if p.Key == "" {
			return nil, fmt.Errorf("profiles file %s: report entry without key", path)
		}
		profiles[p.Key] = p.toProfile()
	}
	return profiles, nil
}

type profilesFile struct {
	Reports []profileEntry `yaml:"reports"`
}

type profileEntry struct {
	Key             string        `yaml:"key"`
	Label           string        `yaml:"label"`
	Format          string        `yaml:"format"`
	Cleaning        cleaningEntry `yaml:"cleaning"`
	CodeColumn      string        `yaml:"code_column"`
	ObjectColumn    string        `yaml:"object_column"`
	CodeColumnIndex int           `yaml:"code_column_index"`
	NumericColumns  []string      `yaml:"numeric_columns"`
	DropLastDataRow bool          `yaml:"drop_last_data_row"`
}

type cleaningEntry struct {
	DiscardLines []int  `yaml:"discard_lines"`
	HeaderRows   int    `yaml:"header_rows"`
	Delimiter    string `yaml:"delimiter"`
	Charset      string `yaml:"charset"`
}

func (p profileEntry) toProfile() report.Profile {
	return report.Profile{
		Key:    p.Key,
		Label:  p.Label,
		Format: report.Format(p.Format),
		Cleaning: report.CleaningProfile{
			DiscardLines: p.Cleaning.DiscardLines,
			HeaderRows:   p.Cleaning.HeaderRows,
			Delimiter:    p.Cleaning.Delimiter,
			Charset:      p.Cleaning.Charset,
		},
		CodeColumn:      p.CodeColumn,
		ObjectColumn:    p.ObjectColumn,
		CodeColumnIndex: p.CodeColumnIndex,
		NumericColumns:  p.NumericColumns,
		DropLastDataRow: p.DropLastDataRow,
	}
}
