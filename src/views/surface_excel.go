package views

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelSurface 每个图表写入一个工作表, 包含数据和原生条形图
type ExcelSurface struct {
	f      *excelize.File
	path   string
	sheets []string
}

func NewExcelSurface(path string) *ExcelSurface {
	return &ExcelSurface{f: excelize.NewFile(), path: path}
}

// Sheets 已写入的工作表
func (s *ExcelSurface) Sheets() []string {
	return append([]string(nil), s.sheets...)
}

// sheetName 工作表名最长31个字符
func sheetName(v View) string {
	name := fmt.Sprintf("%s_%s", v.Dataset, v.Key)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func (s *ExcelSurface) Plot(v View, series *Series) error {
	name := sheetName(v)
	if len(s.sheets) == 0 {
		// 复用默认工作表
		if err := s.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := s.f.NewSheet(name); err != nil {
		return err
	}
	s.sheets = append(s.sheets, name)

	if err := s.f.SetCellValue(name, "A1", v.Title); err != nil {
		return err
	}
	category, value := v.XLabel, v.YLabel
	if v.Horizontal {
		category, value = v.YLabel, v.XLabel
	}
	if err := s.f.SetSheetRow(name, "A2", &[]interface{}{category, value}); err != nil {
		return err
	}

	if series == nil || series.Len() == 0 {
		note := NoDataNote
		if series != nil && series.Note != "" {
			note = series.Note
		}
		return s.f.SetCellValue(name, "A3", note)
	}

	for i, label := range series.Labels {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := s.f.SetSheetRow(name, cell, &[]interface{}{label, series.Values[i]}); err != nil {
			return err
		}
	}
	if series.Note != "" {
		cell, _ := excelize.CoordinatesToCellName(1, series.Len()+4)
		if err := s.f.SetCellValue(name, cell, series.Note); err != nil {
			return err
		}
	}

	return s.f.AddChart(name, "D2", s.chart(v, name, series.Len()))
}

func (s *ExcelSurface) chart(v View, sheet string, n int) *excelize.Chart {
	ref := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	// excelize的XAxis是类别轴, 横向条形图时类别在纵轴上
	chartType, category, value := excelize.Col, v.XLabel, v.YLabel
	if v.Horizontal {
		chartType, category, value = excelize.Bar, v.YLabel, v.XLabel
	}
	return &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$2", ref),
			Categories: fmt.Sprintf("%s!$A$3:$A$%d", ref, n+2),
			Values:     fmt.Sprintf("%s!$B$3:$B$%d", ref, n+2),
		}},
		Title:  []excelize.RichTextRun{{Text: v.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			Title:        []excelize.RichTextRun{{Text: category}},
			ReverseOrder: v.Horizontal, // 横向时第一个类别在最上面
		},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: value}}},
		Dimension: excelize.ChartDimension{Width: 720, Height: 400},
	}
}

// Save 保存到文件
func (s *ExcelSurface) Save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

// Close 释放工作簿
func (s *ExcelSurface) Close() error {
	return s.f.Close()
}
