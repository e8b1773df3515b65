// Package importer finds measurement files on disk and reads them into
// tables, dispatching on file extension.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"neuromorph/domain/measurement"
)

var filePattern = regexp.MustCompile(`^(\d+)_([A-Za-z]+)_(\d+)([LT]?)\.(xlsx?|csv|json)$`)

// ParseFilename extracts experiment, condition, image and dataset marker
// from names like 3_WT_12L.csv. ok is false when the name does not match.
func ParseFilename(path string) (measurement.SourceFile, bool) {
	name := filepath.Base(path)
	m := filePattern.FindStringSubmatch(name)
	if m == nil {
		return measurement.SourceFile{}, false
	}
	experiment, err := strconv.Atoi(m[1])
	if err != nil {
		return measurement.SourceFile{}, false
	}
	image, err := strconv.Atoi(m[3])
	if err != nil {
		return measurement.SourceFile{}, false
	}
	return measurement.SourceFile{
		Path:       path,
		Name:       name,
		Experiment: experiment,
		Condition:  m[2],
		Image:      image,
		Suffix:     m[4],
		Extension:  m[5],
	}, true
}

// ScanDirectory lists matching files in dir (not recursive), sorted by
// experiment, condition, image and name.
func ScanDirectory(dir string) ([]measurement.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	var files []measurement.SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sf, ok := ParseFilename(filepath.Join(dir, e.Name())); ok {
			files = append(files, sf)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Experiment != b.Experiment {
			return a.Experiment < b.Experiment
		}
		if a.Condition != b.Condition {
			return a.Condition < b.Condition
		}
		if a.Image != b.Image {
			return a.Image < b.Image
		}
		return a.Name < b.Name
	})
	return files, nil
}

// DetectDatasets returns the sorted distinct L/T markers present
func DetectDatasets(files []measurement.SourceFile) []string {
	seen := make(map[string]bool)
	var markers []string
	for _, f := range files {
		if f.Suffix != "" && !seen[f.Suffix] {
			seen[f.Suffix] = true
			markers = append(markers, f.Suffix)
		}
	}
	sort.Strings(markers)
	return markers
}

// FilterDataset keeps files carrying marker; an empty marker keeps all
func FilterDataset(files []measurement.SourceFile, marker string) []measurement.SourceFile {
	if marker == "" {
		return files
	}
	var out []measurement.SourceFile
	for _, f := range files {
		if strings.EqualFold(f.Suffix, marker) {
			out = append(out, f)
		}
	}
	return out
}

// Conditions returns the distinct conditions in first-seen order
func Conditions(files []measurement.SourceFile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range files {
		if !seen[f.Condition] {
			seen[f.Condition] = true
			out = append(out, f.Condition)
		}
	}
	return out
}
