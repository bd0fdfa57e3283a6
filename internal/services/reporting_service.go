package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type reportingService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewReportingService(repo repositories.Repository, logger utils.Logger) ReportingService {
	return &reportingService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportingService) ListScores(ctx context.Context, filters repositories.AttemptFilters) ([]*repositories.ScoreRow, error) {
	rows, err := s.repo.Attempt().ListScores(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return rows, nil
}

// ExportScoresXLSX renders the score report as a spreadsheet for the admin
// dashboard download.
func (s *reportingService) ExportScoresXLSX(ctx context.Context, filters repositories.AttemptFilters) ([]byte, error) {
	rows, err := s.ListScores(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"First Name", "Last Name", "Test", "Score", "Total", "Percentage", "Passed", "Submitted At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.FirstName,
			row.LastName,
			row.TestName,
			row.Score,
			row.TotalQuestions,
			row.Percentage,
			row.Passed,
			row.AttemptTimestamp.Format("2006-01-02 15:04:05"),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	s.logger.Info("Exported score report", "rows", len(rows))
	return buf.Bytes(), nil
}
