package utils

import (
	"fmt"

	"CrimeAnalytics/src/dataset"

	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// MissingColumns 返回expected中不在names里的列
func MissingColumns(names, expected []string) []string {
	var missing []string
	for _, name := range expected {
		if !Contains(names, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// SaveToExcel 将清洗后的表保存为Excel文件, null写为空单元格
func SaveToExcel(t *dataset.Table, filePath string) error {
	if t == nil {
		return fmt.Errorf("没有可保存的数据")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	if t.Kind != "" {
		sheetName = string(t.Kind)
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	// 写入列名
	header := make([]interface{}, t.Ncol())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	// 写入数据
	cols := t.Columns()
	row := make([]interface{}, len(cols))
	for rowIdx := 0; rowIdx < t.Nrow(); rowIdx++ {
		for colIdx, col := range cols {
			row[colIdx] = col.Interface(rowIdx)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	// 保存文件
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
