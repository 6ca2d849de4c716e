package processor

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/unicode/norm"
)

// NameCollision 两个不同的原始列名规范化后相同, 后出现的列被丢弃
type NameCollision struct {
	Normalized string
	Kept       string
	Dropped    string
}

// NormalizeName NFKD分解后只保留可打印ASCII, 再去掉首尾空白
func NormalizeName(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x20 && r <= 0x7E {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// normalizedNames 返回每列规范化后的名字, 以及需要保留的列下标
func normalizedNames(names []string) ([]string, []int, []NameCollision) {
	out := make([]string, len(names))
	first := make(map[string]int, len(names))
	var (
		keep       []int
		collisions []NameCollision
	)
	for i, name := range names {
		n := NormalizeName(name)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = n
		if j, ok := first[n]; ok {
			collisions = append(collisions, NameCollision{Normalized: n, Kept: names[j], Dropped: name})
			continue
		}
		first[n] = i
		keep = append(keep, i)
	}
	return out, keep, collisions
}

// NameCollisions 列出规范化后发生冲突的列
func NameCollisions(names []string) []NameCollision {
	_, _, collisions := normalizedNames(names)
	return collisions
}

// Normalize 规范化列名并去掉字符串单元格的首尾空白
// 冲突的列名保留第一次出现的列, nil原样返回
func Normalize(df *dataframe.DataFrame) *dataframe.DataFrame {
	if df == nil {
		return nil
	}

	raw := df.Names()
	names, keep, _ := normalizedNames(raw)
	cols := make([]series.Series, 0, len(keep))
	for _, i := range keep {
		s := df.Col(raw[i])
		cols = append(cols, trimSeries(s, names[i]))
	}

	out := dataframe.New(cols...)
	return &out
}

// trimSeries 只处理String列, NA保持不变
func trimSeries(s series.Series, name string) series.Series {
	if s.Type() != series.String {
		c := s.Copy()
		c.Name = name
		return c
	}

	values := make([]interface{}, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		values[i] = strings.TrimSpace(e.String())
	}
	return series.New(values, series.String, name)
}
