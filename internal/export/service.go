package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/claimspipe/billamounts/internal/repository"
)

// Service is a tiny façade over the run repository that produces XLSX bytes
// for claims-ops review.
type Service struct {
	repo   repository.RunRepository
	logger *slog.Logger
}

func NewService(repo repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRunsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all stored runs.
func (s *Service) ExportRunsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	runs, err := s.repo.ListRuns(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Amounts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Run ID",
		"Created",
		"Source File",
		"Status",
		"Currency",
		"Confidence",
		"Amount Type",
		"Amount",
		"Source Text",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range runs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		writeRunCols := func() {
			write(1, r.ID.String())
			write(2, r.CreatedAt.Format("2006-01-02 15:04:05"))
			write(3, r.SourceName)
			write(4, r.Status)
			write(5, r.Currency)
			write(6, r.Confidence)
		}

		amounts, err := s.repo.ListAmounts(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("query amounts for run %s: %w", r.ID, err)
		}
		if len(amounts) == 0 {
			writeRunCols()
			row++
			continue
		}
		for _, a := range amounts {
			writeRunCols()
			write(7, a.Type)
			write(8, a.Value)
			write(9, truncate(a.Source, 140))
			row++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // run id
	_ = f.SetColWidth(sheet, "B", "B", 20) // created
	_ = f.SetColWidth(sheet, "C", "C", 32) // source file
	_ = f.SetColWidth(sheet, "D", "F", 12) // status/currency/confidence
	_ = f.SetColWidth(sheet, "G", "G", 14) // type
	_ = f.SetColWidth(sheet, "H", "H", 14) // amount
	_ = f.SetColWidth(sheet, "I", "I", 60) // source text

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"runs", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
