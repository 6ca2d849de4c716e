package processor

import (
	"io"

	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/storage"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ColumnCount 某一列的计数
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Report 数据质量报告, 只读, 不修改表
type Report struct {
	Dataset  dataset.Kind  `json:"dataset,omitempty"`
	Source   string        `json:"source,omitempty"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
	Nulls    []ColumnCount `json:"nulls"`    // 只列出有空值的列
	Distinct []ColumnCount `json:"distinct"` // 每列不同的非空值个数
}

// Validate 统计每列的空值数和不同值个数, nil返回nil
func Validate(t *dataset.Table) *Report {
	if t == nil {
		return nil
	}

	r := &Report{
		Dataset:  t.Kind,
		Source:   t.Source,
		Rows:     t.Nrow(),
		Columns:  t.Ncol(),
		Nulls:    []ColumnCount{},
		Distinct: make([]ColumnCount, 0, t.Ncol()),
	}
	for _, col := range t.Columns() {
		if n := col.NullCount(); n > 0 {
			r.Nulls = append(r.Nulls, ColumnCount{Column: col.Name, Count: n})
		}
		r.Distinct = append(r.Distinct, ColumnCount{Column: col.Name, Count: col.DistinctCount()})
	}
	return r
}

// NullCount 返回某列的空值数, 没有空值或没有该列时为0
func (r *Report) NullCount(column string) int {
	for _, c := range r.Nulls {
		if c.Column == column {
			return c.Count
		}
	}
	return 0
}

// DistinctCount 返回某列不同值的个数
func (r *Report) DistinctCount(column string) int {
	for _, c := range r.Distinct {
		if c.Column == column {
			return c.Count
		}
	}
	return 0
}

// Log 输出报告
func (r *Report) Log(logger *storage.Logger) {
	if r == nil {
		return
	}
	logger.Info("数据验证",
		zap.String("dataset", string(r.Dataset)),
		zap.Int("rows", r.Rows),
		zap.Int("columns", r.Columns),
	)
	for _, c := range r.Nulls {
		logger.Info("空值统计", zap.String("column", c.Column), zap.Int("nulls", c.Count))
	}
	for _, c := range r.Distinct {
		logger.Info("唯一值统计", zap.String("column", c.Column), zap.Int("distinct", c.Count))
	}
}

// WriteJSON 以JSON格式写出报告
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
