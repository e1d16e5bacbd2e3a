package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
)

var sensorOrder = []string{"temperature", "humidity", "methane", "other_gases"}

// BuildDailyPDF renders a daily summary report as PDF.
func BuildDailyPDF(summary *analytics.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Environment Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Sensor: %s", summary.SensorID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", summary.Date))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overall Status: %s", summary.OverallStatus))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Readings: %d", summary.ReadingCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Alerts: %d (critical: %d)", summary.AlertCount, summary.CriticalAlertCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Data Quality: %.2f%%", summary.DataQualityScore))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Computed: %s", summary.ComputedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Sensor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Avg", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Min", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Max", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Range", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	byName := statsBySensor(summary)
	for _, sensor := range sensorOrder {
		stats := byName[sensor]
		pdf.CellFormat(40, 6, sensor, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", stats.Avg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", stats.Min), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", stats.Max), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", stats.Range), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(summary.Trends) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, "Trend", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "Direction", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Slope", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, sensor := range trendKeys(summary.Trends) {
			trend := summary.Trends[sensor]
			pdf.CellFormat(40, 6, sensor, "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, trend.Direction, "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.4f", trend.Slope), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyXLSX renders a daily summary report as XLSX.
func BuildDailyXLSX(summary *analytics.Summary) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	trendsSheet := "trends"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(trendsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Daily Environment Report")
	_ = f.SetCellValue(summarySheet, "A3", "Sensor")
	_ = f.SetCellValue(summarySheet, "B3", summary.SensorID)
	_ = f.SetCellValue(summarySheet, "A4", "Date")
	_ = f.SetCellValue(summarySheet, "B4", summary.Date)
	_ = f.SetCellValue(summarySheet, "A5", "Overall Status")
	_ = f.SetCellValue(summarySheet, "B5", summary.OverallStatus)
	_ = f.SetCellValue(summarySheet, "A6", "Readings")
	_ = f.SetCellValue(summarySheet, "B6", summary.ReadingCount)
	_ = f.SetCellValue(summarySheet, "A7", "Alerts")
	_ = f.SetCellValue(summarySheet, "B7", summary.AlertCount)
	_ = f.SetCellValue(summarySheet, "A8", "Critical Alerts")
	_ = f.SetCellValue(summarySheet, "B8", summary.CriticalAlertCount)
	_ = f.SetCellValue(summarySheet, "A9", "Data Quality (%)")
	_ = f.SetCellValue(summarySheet, "B9", summary.DataQualityScore)

	_ = f.SetCellValue(summarySheet, "A11", "Sensor")
	_ = f.SetCellValue(summarySheet, "B11", "Avg")
	_ = f.SetCellValue(summarySheet, "C11", "Min")
	_ = f.SetCellValue(summarySheet, "D11", "Max")
	_ = f.SetCellValue(summarySheet, "E11", "Range")
	byName := statsBySensor(summary)
	for i, sensor := range sensorOrder {
		row := i + 12
		stats := byName[sensor]
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), sensor)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), stats.Avg)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), stats.Min)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), stats.Max)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("E%d", row), stats.Range)
	}

	_ = f.SetCellValue(trendsSheet, "A1", "Sensor")
	_ = f.SetCellValue(trendsSheet, "B1", "Direction")
	_ = f.SetCellValue(trendsSheet, "C1", "Slope")
	for i, sensor := range trendKeys(summary.Trends) {
		row := i + 2
		trend := summary.Trends[sensor]
		_ = f.SetCellValue(trendsSheet, fmt.Sprintf("A%d", row), sensor)
		_ = f.SetCellValue(trendsSheet, fmt.Sprintf("B%d", row), trend.Direction)
		_ = f.SetCellValue(trendsSheet, fmt.Sprintf("C%d", row), trend.Slope)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyCSV renders the per-sensor stats of a daily summary as CSV.
func BuildDailyCSV(summary *analytics.Summary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"sensor", "avg", "min", "max", "range"}); err != nil {
		return nil, err
	}
	byName := statsBySensor(summary)
	for _, sensor := range sensorOrder {
		stats := byName[sensor]
		record := []string{
			sensor,
			strconv.FormatFloat(stats.Avg, 'f', 2, 64),
			strconv.FormatFloat(stats.Min, 'f', 2, 64),
			strconv.FormatFloat(stats.Max, 'f', 2, 64),
			strconv.FormatFloat(stats.Range, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statsBySensor(summary *analytics.Summary) map[string]analytics.SensorStats {
	return map[string]analytics.SensorStats{
		"temperature": summary.Temperature,
		"humidity":    summary.Humidity,
		"methane":     summary.Methane,
		"other_gases": summary.OtherGases,
	}
}

func trendKeys(trends map[string]analytics.Trend) []string {
	keys := make([]string, 0, len(trends))
	for _, sensor := range sensorOrder {
		if _, ok := trends[sensor]; ok {
			keys = append(keys, sensor)
		}
	}
	return keys
}
