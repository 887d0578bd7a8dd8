package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

var sessionExportHeader = []string{
	"Session ID", "Name", "Email", "Search Type", "Status", "Current Step",
	"Total Steps", "Answers", "UTM Source", "UTM Medium", "UTM Campaign",
	"Started At", "Completed At", "Dropped Off At", "Drop-off Step", "Drop-off Reason",
}

func sessionExportRow(s Search) []string {
	dropOffStep := ""
	if s.DropOffStep != nil {
		dropOffStep = strconv.Itoa(*s.DropOffStep)
	}
	return []string{
		s.SessionID,
		s.Name,
		s.Email,
		s.SearchType,
		string(SessionStatus(s)),
		strconv.Itoa(s.CurrentStep),
		strconv.Itoa(s.TotalSteps),
		strconv.Itoa(len(s.Answers)),
		s.UTMSource,
		s.UTMMedium,
		s.UTMCampaign,
		formatTime(s.StartedAt),
		formatTime(s.CompletedAt),
		formatTime(s.DroppedOffAt),
		dropOffStep,
		s.DropOffReason,
	}
}

// WriteSessionsCSV writes sessions as CSV with a header row
func WriteSessionsCSV(w io.Writer, sessions []Search) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sessionExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range sessions {
		if err := writer.Write(sessionExportRow(s)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSessionsExcel writes sessions as an XLSX workbook with one sheet
func WriteSessionsExcel(w io.Writer, sessions []Search) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sessions"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &sessionExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(sessionExportHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range sessions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := sessionExportRow(s)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
