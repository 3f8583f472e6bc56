package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/approval"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/timeline"
	"github.com/xuri/excelize/v2"
)

// ExportService 导出生产计划
type ExportService struct {
	repos    *repository.Repositories
	schedule *ScheduleService
}

func NewExportService(repos *repository.Repositories, schedule *ScheduleService) *ExportService {
	return &ExportService{repos: repos, schedule: schedule}
}

var workplanExportHeaders = []string{
	"No", "Order", "Nama Project", "Perusahaan", "Customer", "Jumlah Produk",
	"Tahapan", "Selesai", "Progress (%)", "Mulai", "Selesai Timeline", "Total Hari",
	"Status Perpanjangan", "Alasan Perpanjangan", "Response By", "Response Time",
}

// ExportWorkplans builds a workbook with one row per published work item.
func (s *ExportService) ExportWorkplans(ctx context.Context) (*excelize.File, string, error) {
	items, err := s.repos.WorkItem.ListPublished(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list published work items: %w", err)
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	requests, err := s.repos.Extension.ListByWorkItems(ctx, ids)
	if err != nil {
		return nil, "", fmt.Errorf("list extension requests: %w", err)
	}
	latest := approval.Latest(requests)

	f := excelize.NewFile()
	sheet := "Workplan"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range workplanExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for idx, it := range items {
		row := idx + 2
		var stages []*timeline.Stage
		done := 0
		for _, p := range it.Products {
			for _, st := range p.Stages {
				stages = append(stages, &timeline.Stage{Status: st.Status})
				if st.Status == entity.StageStatusDone {
					done++
				}
			}
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), idx+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), it.OrderID)
		if it.Order != nil {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), it.Order.NamaProject)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), it.Order.CompanyName)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), it.Order.CustomerName)
		}
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), len(it.Products))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), len(stages))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), done)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), timeline.ProductProgress(stages))
		if start := entity.FromDate(it.TimelineStart); start != nil {
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), start.Format("2006-01-02"))
		}
		if end := entity.FromDate(it.TimelineEnd); end != nil {
			f.SetCellValue(sheet, fmt.Sprintf("K%d", row), end.Format("2006-01-02"))
		}
		if it.TotalDays != nil {
			f.SetCellValue(sheet, fmt.Sprintf("L%d", row), *it.TotalDays)
		}
		if r, ok := latest[it.ID]; ok {
			f.SetCellValue(sheet, fmt.Sprintf("M%d", row), r.Status)
			if r.Reason != nil {
				f.SetCellValue(sheet, fmt.Sprintf("N%d", row), *r.Reason)
			}
		}
		f.SetCellValue(sheet, fmt.Sprintf("O%d", row), it.ResponseBy)
		if it.ResponseTime != nil {
			f.SetCellValue(sheet, fmt.Sprintf("P%d", row), it.ResponseTime.Format("2006-01-02 15:04"))
		}
	}

	colWidths := []float64{5, 8, 24, 20, 20, 12, 10, 10, 12, 12, 14, 10, 18, 30, 16, 18}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Workplan_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
