package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/halfdome/confwatch/internal/model"
)

// maxConcurrentFiles bounds the parallel file reads of a directory load.
const maxConcurrentFiles = 4

// Result is a completed load: the usable conferences plus a warning line
// for every record or file the loader had to drop or degrade.
type Result struct {
	Conferences []model.Conference
	Warnings    []string
}

// Load reads conference records from path, which may be a single YAML file
// or a directory of them.
//
// Defective content never fails the load: an unreadable or undecodable file
// inside a directory becomes a warning, a record without a name is dropped
// with a warning, and a duplicate conference ID keeps the first record
// seen. Only an unusable path itself returns an error.
func Load(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("conference data: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = dataFiles(path)
		if err != nil {
			return nil, err
		}
	}

	type fileResult struct {
		confs    []model.Conference
		warnings []string
	}
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			confs, warnings, err := loadFile(file)
			if err != nil {
				// A defective file degrades to a warning so the rest of
				// the directory still loads.
				results[i] = fileResult{warnings: []string{fmt.Sprintf("%s: %v", filepath.Base(file), err)}}
				return nil
			}
			results[i] = fileResult{confs: confs, warnings: warnings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in file-name order, first record wins on duplicate IDs.
	res := &Result{}
	seen := make(map[string]bool)
	for _, fr := range results {
		res.Warnings = append(res.Warnings, fr.warnings...)
		for _, conf := range fr.confs {
			if seen[conf.ID] {
				res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate conference id %q, keeping the first record", conf.ID))
				continue
			}
			seen[conf.ID] = true
			res.Conferences = append(res.Conferences, conf)
		}
	}
	return res, nil
}

// loadFile decodes one YAML file into conferences.
func loadFile(path string) ([]model.Conference, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}

	var confs []model.Conference
	var warnings []string
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("%s: record without a name dropped", filepath.Base(path)))
			continue
		}

		conf, ws := rec.toConference()
		warnings = append(warnings, ws...)
		if err := conf.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		confs = append(confs, conf)
	}
	return confs, warnings, nil
}

// decodeRecords accepts both file shapes in the wild: a top-level sequence
// of records or a single bare record.
func decodeRecords(data []byte) ([]record, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single record
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []record{single}, nil
}

// dataFiles lists the YAML files directly inside dir, sorted by name.
func dataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("conference data: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yml" || ext == ".yaml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
