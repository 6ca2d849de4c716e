// reader.go
package file

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrSheetNotFound 指定的工作表不存在
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrNoHeader 标题行之前就没有数据了
	ErrNoHeader = errors.New("no header row")
)

// CSVOptions CSV读取参数
type CSVOptions struct {
	Delimiter string // 默认 ";"
	Encoding  string // utf-8 | latin1
	HeaderRow int
}

// ReadXLSX 用excelize读取工作表, sheetName为空时读取第一个工作表
// 日期和时间单元格保留原始序列号, 由后续流程解析
func ReadXLSX(filePath, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open file %s: %w", filePath, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %w", ErrSheetNotFound)
		}
		sheetName = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheetName); idx < 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", sheetName, ErrSheetNotFound)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	return ConvertRows(rows, headerRow)
}

// ReadXLSXBytes 从内存中的工作簿读取, 使用tealeg/xlsx
func ReadXLSXBytes(data []byte, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open binary: %w", err)
	}

	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %w", ErrSheetNotFound)
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		var ok bool
		if sheet, ok = xlFile.Sheet[sheetName]; !ok {
			return dataframe.DataFrame{}, fmt.Errorf("%s: %w", sheetName, ErrSheetNotFound)
		}
	}

	return ConvertRows(sheetRows(sheet), headerRow)
}

// sheetRows 将xlsx.Sheet展开成字符串矩阵
func sheetRows(sheet *xlsx.Sheet) [][]string {
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell != nil {
				cells[i] = cell.Value
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

// ReadCSV 读取分号分隔(默认)的CSV文件, 可选latin1编码
func ReadCSV(filePath string, opts CSVOptions) (dataframe.DataFrame, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("csv open file %s: %w", filePath, err)
	}

	var r io.Reader = bytes.NewReader(data)
	switch strings.ToLower(opts.Encoding) {
	case "", "utf-8", "utf8":
		r = bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	case "latin1", "latin-1", "iso-8859-1":
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported csv encoding %q", opts.Encoding)
	}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	if opts.Delimiter != "" {
		reader.Comma = []rune(opts.Delimiter)[0]
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv %s: %w", filePath, err)
	}
	return ConvertRows(rows, opts.HeaderRow)
}

// ConvertRows 将行矩阵转换为全部为String列的DataFrame
// 缺失的单元格为NA, 空白标题命名为 "Unnamed: i", 重复标题只保留第一次出现的列
func ConvertRows(rows [][]string, headerRow int) (dataframe.DataFrame, error) {
	if headerRow < 0 || len(rows) <= headerRow {
		return dataframe.DataFrame{}, ErrNoHeader
	}

	header := rows[headerRow]
	seen := make(map[string]bool, len(header))
	var (
		names []string
		index []int
	)
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		index = append(index, i)
	}
	if len(names) == 0 {
		return dataframe.DataFrame{}, ErrNoHeader
	}

	body := rows[headerRow+1:]
	seriesList := make([]series.Series, len(names))
	for c, name := range names {
		values := make([]interface{}, len(body))
		for r, row := range body {
			if idx := index[c]; idx < len(row) {
				values[r] = row[idx]
			}
		}
		seriesList[c] = series.New(values, series.String, name)
	}

	df := dataframe.New(seriesList...)
	return df, df.Err
}

// EnsureDir 确保目录存在
func EnsureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}
