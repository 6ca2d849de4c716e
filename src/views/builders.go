package views

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/processor"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoData 列不存在或没有可显示的值
	ErrNoData = errors.New("no data to show")
	// ErrDatasetUnavailable 数据集没有加载成功
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)

// Series 图表数据
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Note   string    `json:"note,omitempty"`
}

func (s *Series) Len() int { return len(s.Labels) }

// Builder 从清洗后的表计算一个图表的数据
type Builder func(t *dataset.Table) (*Series, error)

func column(t *dataset.Table, name string) (*dataset.Column, error) {
	col, ok := t.Col(name)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", ErrNoData, name)
	}
	return col, nil
}

type labelCount struct {
	label string
	count int
}

// frequencies 按出现次数降序, 次数相同按标签排序
func frequencies(col *dataset.Column) []labelCount {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		counts[col.Value(i)]++
	}

	out := make([]labelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, labelCount{label, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

func fromCounts(counts []labelCount) (*Series, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	s := &Series{Labels: make([]string, len(counts)), Values: make([]float64, len(counts))}
	for i, c := range counts {
		s.Labels[i] = c.label
		s.Values[i] = float64(c.count)
	}
	return s, nil
}

// CountBy 统计某列每个值出现的次数
func CountBy(name string) Builder {
	return TopN(name, 0)
}

// TopN 出现次数最多的前n个值, n<=0表示全部
func TopN(name string, n int) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		counts := frequencies(col)
		if n > 0 && len(counts) > n {
			counts = counts[:n]
		}
		return fromCounts(counts)
	}
}

// ByYear 按年份计数, 年份升序
func ByYear(name string) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		if col.Kind != dataset.Date {
			return nil, fmt.Errorf("%w: column %q is %s, not date", ErrNoData, name, col.Kind)
		}
		counts := make(map[int]int)
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) {
				counts[col.Dates[i].Year]++
			}
		}
		return sortedIntCounts(counts, "%d")
	}
}

// ByMonth 按月份计数, 固定输出1到12月
func ByMonth(name string) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		if col.Kind != dataset.Date {
			return nil, fmt.Errorf("%w: column %q is %s, not date", ErrNoData, name, col.Kind)
		}
		s := &Series{Labels: make([]string, 12), Values: make([]float64, 12)}
		total := 0
		for m := 0; m < 12; m++ {
			s.Labels[m] = strconv.Itoa(m + 1)
		}
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) {
				s.Values[int(col.Dates[i].Month)-1]++
				total++
			}
		}
		if total == 0 {
			return nil, ErrNoData
		}
		return s, nil
	}
}

// weekdayKey 忽略重音, 大小写和 "-feira" 后缀
func weekdayKey(s string) string {
	key := strings.ToLower(processor.NormalizeName(s))
	key = strings.TrimSuffix(key, "-feira")
	return strings.TrimSuffix(key, " feira")
}

// ByWeekday 按给定顺序统计星期, 不在顺序中的值忽略
func ByWeekday(name string, order []string) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		index := make(map[string]int, len(order))
		for i, day := range order {
			index[weekdayKey(day)] = i
		}

		s := &Series{Labels: append([]string(nil), order...), Values: make([]float64, len(order))}
		total := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			if j, ok := index[weekdayKey(col.Value(i))]; ok {
				s.Values[j]++
				total++
			}
		}
		if total == 0 {
			return nil, ErrNoData
		}
		return s, nil
	}
}

// ByHour 按小时计数, 只输出出现过的小时
func ByHour(name string) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		if col.Kind != dataset.Time {
			return nil, fmt.Errorf("%w: column %q is %s, not time", ErrNoData, name, col.Kind)
		}
		counts := make(map[int]int)
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) {
				counts[col.Times[i].Hour]++
			}
		}
		return sortedIntCounts(counts, "%02d")
	}
}

func sortedIntCounts(counts map[int]int, format string) (*Series, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	s := &Series{Labels: make([]string, len(keys)), Values: make([]float64, len(keys))}
	for i, k := range keys {
		s.Labels[i] = fmt.Sprintf(format, k)
		s.Values[i] = float64(counts[k])
	}
	return s, nil
}

// QuantityDistribution 正数值的对数分箱直方图, 超过99分位数的值截掉
func QuantityDistribution(name string, bins int) Builder {
	return func(t *dataset.Table) (*Series, error) {
		col, err := column(t, name)
		if err != nil {
			return nil, err
		}
		if col.Kind != dataset.Numeric {
			return nil, fmt.Errorf("%w: column %q is %s, not numeric", ErrNoData, name, col.Kind)
		}

		var x []float64
		for i := 0; i < col.Len(); i++ {
			if !col.IsNull(i) && col.Numbers[i] > 0 {
				x = append(x, col.Numbers[i])
			}
		}
		if len(x) == 0 {
			return nil, ErrNoData
		}
		sort.Float64s(x)

		limit := stat.Quantile(0.99, stat.Empirical, x, nil)
		x = x[:sort.SearchFloat64s(x, math.Nextafter(limit, math.Inf(1)))]

		lo, hi := x[0], x[len(x)-1]
		if lo == hi || bins < 1 {
			bins = 1
		}
		dividers := make([]float64, bins+1)
		if bins == 1 {
			dividers[0], dividers[1] = lo, hi
		} else {
			floats.LogSpan(dividers, lo, hi)
		}
		// 最后一个分界是开区间, 让最大值落在最后一个箱里
		dividers[bins] = math.Nextafter(hi, math.Inf(1))
		dividers[0] = lo

		counts := stat.Histogram(nil, dividers, x, nil)
		s := &Series{
			Labels: make([]string, bins),
			Values: counts,
			Note:   fmt.Sprintf("até o percentil 99 (%.3g), escala log", limit),
		}
		for i := 0; i < bins; i++ {
			s.Labels[i] = fmt.Sprintf("%.3g-%.3g", dividers[i], dividers[i+1])
		}
		return s, nil
	}
}
