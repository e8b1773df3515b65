package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"neuromorph/adapters/importer"
	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
	apperrors "neuromorph/internal/errors"
	"neuromorph/ports"
)

// ImportService loads measurement files into assays
type ImportService struct {
	repo   ports.MeasurementRepository
	reader ports.TableReader
	log    *internal.Logger
}

// ImportRequest describes one import run. Files are taken from Directory
// when Paths is empty.
type ImportRequest struct {
	Assay       string
	Description string
	Directory   string
	Paths       []string
	Parameters  []string
	Dataset     string // L or T marker, empty for all files
}

// FileFailure records a file that could not be imported
type FileFailure struct {
	File string
	Err  error
}

// ImportResult summarises an import run
type ImportResult struct {
	Assay      *measurement.Assay
	Files      int
	Rows       int
	Duplicates []string
	Failures   []FileFailure
}

// NewImportService creates an import service
func NewImportService(repo ports.MeasurementRepository, reader ports.TableReader) *ImportService {
	return &ImportService{
		repo:   repo,
		reader: reader,
		log:    internal.DefaultLogger.WithComponent("ImportService"),
	}
}

// Import reads each file, taking the condition from its name, and stores
// it under the named assay, creating the assay on first use. Files that
// fail are recorded and the rest continue.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.Assay == "" {
		return nil, core.NewValidationError("assay", "name is required")
	}

	files, err := s.resolveFiles(req)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, core.NewValidationError("files", "no measurement files matched <experiment>_<Condition>_<image>[L|T].<ext>")
	}

	assay, err := s.repo.GetAssayByName(ctx, req.Assay)
	if errors.Is(err, core.ErrAssayNotFound) {
		assay, err = s.repo.CreateAssay(ctx, req.Assay, req.Description)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Assay: assay}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		table, err := s.reader.ReadTable(ctx, f.Path, req.Parameters)
		if err != nil {
			s.log.Warn("%s: %v", f.Name, err)
			result.Failures = append(result.Failures, FileFailure{File: f.Name, Err: apperrors.ImportFailed(f.Name, err)})
			continue
		}
		n, err := s.repo.InsertTable(ctx, assay.ID, f.Condition, table)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{File: f.Name, Err: apperrors.ImportFailed(f.Name, err)})
			continue
		}
		if n == 0 && table.Len() > 0 {
			result.Duplicates = append(result.Duplicates, f.Name)
			continue
		}
		result.Files++
		result.Rows += n
	}

	s.log.Info("imported %d files (%d rows) into %q, %d duplicates, %d failures",
		result.Files, result.Rows, assay.Name, len(result.Duplicates), len(result.Failures))
	return result, nil
}

func (s *ImportService) resolveFiles(req ImportRequest) ([]measurement.SourceFile, error) {
	if len(req.Paths) == 0 {
		if req.Directory == "" {
			return nil, core.NewValidationError("files", "a directory or file list is required")
		}
		files, err := importer.ScanDirectory(req.Directory)
		if err != nil {
			return nil, err
		}
		return importer.FilterDataset(files, req.Dataset), nil
	}

	files := make([]measurement.SourceFile, 0, len(req.Paths))
	for _, p := range req.Paths {
		f, ok := importer.ParseFilename(p)
		if !ok {
			return nil, core.NewValidationError(filepath.Base(p), fmt.Sprintf("file name does not follow %s", "<experiment>_<Condition>_<image>[L|T].<ext>"))
		}
		files = append(files, f)
	}
	return importer.FilterDataset(files, req.Dataset), nil
}
