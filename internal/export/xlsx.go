// Package export writes feedback and customer lists as Excel workbooks.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// ContentType is the media type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	feedbackHeader = []string{"id", "created_at", "source", "sentiment", "sentiment_score", "product_area", "customer", "segment", "rating", "text"}
	customerHeader = []string{"id", "company_name", "segment", "plan", "arr", "mrr", "health_score", "renewal_date", "account_manager", "feedback_count", "negative_feedback_count"}
)

// Feedback writes one row per feedback item under a header row.
func Feedback(items []models.Feedback) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, f := range items {
		rows = append(rows, []any{
			f.ID,
			f.CreatedAt,
			models.SourceLabel(f.Source),
			f.Sentiment,
			floatCell(f.SentimentScore),
			f.ProductArea,
			f.CustomerName,
			f.CustomerSegment,
			floatCell(f.Rating),
			f.Text,
		})
	}
	return workbook("Feedback", feedbackHeader, rows)
}

// Customers writes one row per customer under a header row.
func Customers(items []models.Customer) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, c := range items {
		rows = append(rows, []any{
			c.ID,
			c.CompanyName,
			c.Segment,
			c.Plan,
			floatCell(c.ARR),
			floatCell(c.MRR),
			floatCell(c.HealthScore),
			c.RenewalDate,
			c.AccountManager,
			intCell(c.FeedbackCount),
			intCell(c.NegativeFeedbackCount),
		})
	}
	return workbook("Customers", customerHeader, rows)
}

func workbook(sheet string, header []string, rows [][]any) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := xl.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
