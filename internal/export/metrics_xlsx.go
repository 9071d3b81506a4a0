// Package export writes metrics rollups as downloadable spreadsheets.
package export

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"postureai/models"
)

var dailyHeaders = []string{
	"Date",
	"Total Reports",
	"Total Sections",
	"Prompt Tokens",
	"Completion Tokens",
	"Total Cost (USD)",
	"Avg Latency (ms)",
	"Median Latency (ms)",
	"P95 Latency (ms)",
	"Cache Hit Rate",
	"Success Rate",
	"Degraded Rate",
}

// DailyMetricsXLSX renders daily rollup rows into a single-sheet workbook
func DailyMetricsXLSX(rows []models.DailyMetrics) ([]byte, error) {
	f := excelize.NewFile()

	sheet := "Daily Metrics"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range dailyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.TotalReports,
			row.TotalSections,
			row.TotalTokensPrompt,
			row.TotalTokensCompletion,
			row.TotalCostUSD,
			row.AvgLatencyMs,
			row.MedianLatencyMs,
			row.P95LatencyMs,
			row.CacheHitRate,
			row.SuccessRate,
			row.DegradedRate,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
