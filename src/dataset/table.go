// Package dataset 清洗流程输出的带类型数据表
// 每列只有一种类型, null由Valid标记, 不使用特殊值
package dataset

import (
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
)

// ColumnKind 列的语义类型
type ColumnKind int

const (
	Text ColumnKind = iota
	Numeric
	Date
	Time
)

func (k ColumnKind) String() string {
	switch k {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case Date:
		return "date"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Column 一列带类型的数据
// 只有与Kind对应的切片会被填充
type Column struct {
	Name    string
	Kind    ColumnKind
	Texts   []string
	Numbers []float64
	Dates   []civil.Date
	Times   []civil.Time
	Valid   []bool
}

// NewColumn 创建指定长度的空列(全部为null)
func NewColumn(name string, kind ColumnKind, n int) *Column {
	c := &Column{Name: name, Kind: kind, Valid: make([]bool, n)}
	switch kind {
	case Numeric:
		c.Numbers = make([]float64, n)
	case Date:
		c.Dates = make([]civil.Date, n)
	case Time:
		c.Times = make([]civil.Time, n)
	default:
		c.Texts = make([]string, n)
	}
	return c
}

func (c *Column) Len() int { return len(c.Valid) }

func (c *Column) IsNull(i int) bool { return !c.Valid[i] }

func (c *Column) SetText(i int, v string) {
	c.Texts[i] = v
	c.Valid[i] = true
}

func (c *Column) SetNumber(i int, v float64) {
	c.Numbers[i] = v
	c.Valid[i] = true
}

func (c *Column) SetDate(i int, v civil.Date) {
	c.Dates[i] = v
	c.Valid[i] = true
}

func (c *Column) SetTime(i int, v civil.Time) {
	c.Times[i] = v
	c.Valid[i] = true
}

// NullCount 统计null数量
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// DistinctCount 统计非null的不同值数量
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for i := range c.Valid {
		if c.Valid[i] {
			seen[c.Value(i)] = struct{}{}
		}
	}
	return len(seen)
}

// Value 返回单元格的字符串形式, null返回空串
func (c *Column) Value(i int) string {
	if !c.Valid[i] {
		return ""
	}
	switch c.Kind {
	case Numeric:
		return strconv.FormatFloat(c.Numbers[i], 'f', -1, 64)
	case Date:
		return c.Dates[i].String()
	case Time:
		t := c.Times[i]
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	default:
		return c.Texts[i]
	}
}

// Interface 返回适合写入excel的值, null返回nil
func (c *Column) Interface(i int) interface{} {
	if !c.Valid[i] {
		return nil
	}
	switch c.Kind {
	case Numeric:
		return c.Numbers[i]
	default:
		return c.Value(i)
	}
}

// Table 清洗后的数据表
type Table struct {
	Kind    Kind
	Source  string
	columns []*Column
	index   map[string]int
	nrows   int
}

// NewTable 用等长的列创建表, 列名不能重复
func NewTable(kind Kind, source string, cols ...*Column) (*Table, error) {
	t := &Table{Kind: kind, Source: source, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.nrows)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) Nrow() int { return t.nrows }

func (t *Table) Ncol() int { return len(t.columns) }

// Names 返回列名(保持顺序)
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) Columns() []*Column { return t.columns }

// Col 按名称取列
func (t *Table) Col(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}
