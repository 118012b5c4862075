package export

import (
	"fmt"
	"io"

	"rescuelink/internal/utils"
	"rescuelink/pkg/types"

	"github.com/xuri/excelize/v2"
)

const (
	ReportsSheet = "Reports"
	SummarySheet = "Summary"
)

var reportHeaders = []string{
	"ID", "Type", "Description", "Location", "Status", "Severity", "Rejection Reason",
	"Mission", "View", "SOS", "Time", "Approved At", "Rejected At", "Accepted At", "Completed At",
}

var reportColumnWidths = []float64{24, 18, 40, 24, 12, 10, 24, 12, 12, 6, 12, 22, 22, 22, 22}

// WriteReports renders reports into a workbook with one row per report and a
// per view summary, then writes it to w.
func WriteReports(w io.Writer, reports []*types.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F4CCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, ReportsSheet, reportHeaders, headerStyle); err != nil {
		return err
	}

	for i, width := range reportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(ReportsSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range reports {
		severity := ""
		if r.Severity != nil {
			severity = string(*r.Severity)
		}

		row := []any{
			r.ID, r.Type, r.Description, r.Location, string(r.Status), severity,
			utils.PtrString(r.RejectionReason), string(r.MissionStatus), string(types.Classify(r)),
			yesNo(r.IsEmergencySOS), r.Time,
			utils.PtrTimeString(r.ApprovedAt), utils.PtrTimeString(r.RejectedAt),
			utils.PtrTimeString(r.AcceptedAt), utils.PtrTimeString(r.CompletedAt),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(ReportsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write report %s: %w", r.ID, err)
		}
	}

	if err := f.SetPanes(ReportsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeSummary(f, reports, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func writeSummary(f *excelize.File, reports []*types.Report, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeHeader(f, SummarySheet, []string{"View", "Reports"}, headerStyle); err != nil {
		return err
	}

	views := types.Partition(reports)
	rows := make([][]any, 0, len(types.AllViews)+1)
	for _, v := range types.AllViews {
		rows = append(rows, []any{string(v), len(views.Get(v))})
	}
	rows = append(rows, []any{"total", views.Total})

	for i := range rows {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+2), &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	return f.SetColWidth(SummarySheet, "A", "B", 14)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
