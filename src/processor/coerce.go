package processor

import (
	"fmt"

	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/storage"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Schema 按列名给出列类型, config.DataConfig实现了这个接口
type Schema interface {
	ColumnKind(name string) dataset.ColumnKind
}

// Coerce 把全部为字符串的DataFrame转换为带类型的表
// 无法解析的单元格置为null并产生一条警告, 整列不会被拒绝
func Coerce(df *dataframe.DataFrame, schema Schema) (*dataset.Table, []CoercionWarning) {
	if df == nil {
		return nil, nil
	}

	var warnings []CoercionWarning
	nrow := df.Nrow()
	cols := make([]*dataset.Column, 0, df.Ncol())

	for _, name := range df.Names() {
		s := df.Col(name)
		col := dataset.NewColumn(name, schema.ColumnKind(name), nrow)

		for i := 0; i < nrow; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			token := e.String()

			reason := ""
			switch col.Kind {
			case dataset.Numeric:
				if v, ok := parseNumber(token); ok {
					col.SetNumber(i, v)
				} else {
					reason = ReasonInvalidNumber
				}
			case dataset.Date:
				if d, ok := parseDate(token); ok {
					col.SetDate(i, d)
				} else {
					reason = ReasonInvalidDate
				}
			case dataset.Time:
				if t, why, ok := parseHora(token); ok {
					col.SetTime(i, t)
				} else {
					reason = why
				}
			default:
				col.SetText(i, token)
			}

			if reason != "" {
				warnings = append(warnings, CoercionWarning{Column: name, Row: i, Token: token, Reason: reason})
			}
		}
		cols = append(cols, col)
	}

	// gota保证列名唯一, 各列长度都是nrow, 这里不会出错
	t, _ := dataset.NewTable("", "", cols...)
	return t, warnings
}

// HoraSummary 时间列缺失情况
type HoraSummary struct {
	Column  string  `json:"column"`
	Total   int     `json:"total"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"`
}

// SummarizeHora 统计时间列的缺失数量和比例, 表中没有该列时返回false
func SummarizeHora(t *dataset.Table, column string) (HoraSummary, bool) {
	if t == nil {
		return HoraSummary{}, false
	}
	col, ok := t.Col(column)
	if !ok {
		return HoraSummary{}, false
	}

	sum := HoraSummary{Column: column, Total: t.Nrow(), Missing: col.NullCount()}
	if sum.Total > 0 {
		sum.Percent = float64(sum.Missing) / float64(sum.Total) * 100
	}
	return sum, true
}

// Log 输出时间列缺失统计
func (h HoraSummary) Log(logger *storage.Logger) {
	logger.Info("时间列统计",
		zap.String("column", h.Column),
		zap.Int("total", h.Total),
		zap.Int("missing", h.Missing),
		zap.String("percent", fmt.Sprintf("%.2f%%", h.Percent)),
	)
}
