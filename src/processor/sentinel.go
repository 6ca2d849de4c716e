package processor

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultSentinels 表示"空"的字符串, 比较时忽略大小写
var DefaultSentinels = []string{"", "nan", "NaN", "NULL", "null", "None", "none"}

// IsSentinel 判断去掉空白后的值是否等于某个空值标记
func IsSentinel(value string, tokens []string) bool {
	value = strings.TrimSpace(value)
	for _, tok := range tokens {
		if strings.EqualFold(value, tok) {
			return true
		}
	}
	return false
}

// ReplaceSentinels 把空值标记替换成NA, tokens为空时使用DefaultSentinels
func ReplaceSentinels(df *dataframe.DataFrame, tokens []string) *dataframe.DataFrame {
	if df == nil {
		return nil
	}
	if len(tokens) == 0 {
		tokens = DefaultSentinels
	}

	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		if s.Type() != series.String {
			cols = append(cols, s.Copy())
			continue
		}
		values := make([]interface{}, s.Len())
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() || IsSentinel(e.String(), tokens) {
				continue
			}
			values[i] = e.String()
		}
		cols = append(cols, series.New(values, series.String, name))
	}

	out := dataframe.New(cols...)
	return &out
}
