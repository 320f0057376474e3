// Package excel renders enhancement results into .xlsx reports for the
// seller-facing export flow.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

const (
	summarySheet = "Summary"
	issuesSheet  = "Issues"
)

// WriteReport writes one workbook: a per-product score summary sheet and
// a flattened issue sheet. Returns the written file path.
func (w *Writer) WriteReport(ctx context.Context, results []*domain.EnhancementResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return "", fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return "", fmt.Errorf("create issues sheet: %w", err)
	}

	summaryHeader := []any{
		"Product ID", "Marketplace", "Overall", "Validation", "Compliance",
		"Content", "SEO", "Critical Issues", "Recommendations", "Error",
	}
	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return "", err
	}

	issuesHeader := []any{"Product ID", "Field", "Severity", "Message", "Recommendation", "Policy Reference"}
	if err := writeRow(f, issuesSheet, 1, issuesHeader); err != nil {
		return "", err
	}

	issueRow := 2
	for i, result := range results {
		row := []any{
			result.ProductID,
			result.Marketplace,
			result.OverallScore,
			result.ValidationScore,
			result.ComplianceScore,
			result.ContentScore,
			result.SEOScore,
			len(result.CriticalIssues),
			len(result.Recommendations),
			result.Error,
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return "", err
		}

		for _, issue := range append(append([]domain.Issue(nil), result.CriticalIssues...), result.Recommendations...) {
			row := []any{result.ProductID, issue.Field, string(issue.Severity), issue.Message, issue.Recommendation, issue.PolicyRef}
			if err := writeRow(f, issuesSheet, issueRow, row); err != nil {
				return "", err
			}
			issueRow++
		}
	}

	path := filepath.Join(w.dir, fmt.Sprintf("enhancement-%s-%s.xlsx",
		time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8]))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
