package processor

import (
	"testing"

	"CrimeAnalytics/src/config"
	"CrimeAnalytics/src/dataset"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceSentinels(t *testing.T) {
	for _, tok := range DefaultSentinels {
		df := frame(strs("Natureza", tok, "Homicidio"), strs("Idade", "22", tok))
		out := ReplaceSentinels(df, nil)
		assert.True(t, out.Col("Natureza").Elem(0).IsNA(), "token %q", tok)
		assert.True(t, out.Col("Idade").Elem(1).IsNA(), "token %q", tok)
		assert.Equal(t, "Homicidio", out.Col("Natureza").Elem(1).String())
	}

	// 比较时忽略大小写和首尾空白
	out := ReplaceSentinels(frame(strs("Genero", " NONE ", "Nulo")), nil)
	assert.True(t, out.Col("Genero").Elem(0).IsNA())
	assert.False(t, out.Col("Genero").Elem(1).IsNA())

	out = ReplaceSentinels(frame(strs("Genero", "-", "x")), []string{"-"})
	assert.True(t, out.Col("Genero").Elem(0).IsNA())
}

func TestCoerceNumeric(t *testing.T) {
	df := frame(strs("Idade", "12", "abc", "", "7.5"))
	tbl, warnings := Coerce(ReplaceSentinels(df, nil), config.DefaultDataConfig())
	require.NotNil(t, tbl)

	col, ok := tbl.Col("Idade")
	require.True(t, ok)
	assert.Equal(t, dataset.Numeric, col.Kind)
	assert.Equal(t, []interface{}{12.0, nil, nil, 7.5},
		[]interface{}{col.Interface(0), col.Interface(1), col.Interface(2), col.Interface(3)})

	// 空字符串是空值标记, 不产生警告
	require.Len(t, warnings, 1)
	assert.Equal(t, CoercionWarning{Column: "Idade", Row: 1, Token: "abc", Reason: ReasonInvalidNumber}, warnings[0])
}

func TestParseNumber(t *testing.T) {
	cases := map[string]struct {
		want float64
		ok   bool
	}{
		"7,5":   {7.5, true},
		" 12 ":  {12, true},
		"1e3":   {1000, true},
		"NaN":   {0, false},
		"Inf":   {0, false},
		"1.2,3": {0, false},
		"kg":    {0, false},
	}
	for token, c := range cases {
		v, ok := parseNumber(token)
		assert.Equal(t, c.ok, ok, token)
		assert.Equal(t, c.want, v, token)
	}
}

func TestCoerceDate(t *testing.T) {
	df := frame(strs("Data", "2020-05-17", "17/05/2020", "43968", "31/02/2020", "ontem"))
	tbl, warnings := Coerce(df, config.DefaultDataConfig())

	col, _ := tbl.Col("Data")
	assert.Equal(t, dataset.Date, col.Kind)
	want := civil.Date{Year: 2020, Month: 5, Day: 17}
	for i := 0; i < 3; i++ {
		require.False(t, col.IsNull(i), "row %d", i)
		assert.Equal(t, want, col.Dates[i], "row %d", i)
	}
	assert.True(t, col.IsNull(3))
	assert.True(t, col.IsNull(4))
	assert.Len(t, warnings, 2)
}

func TestParseDateRejectsBareYear(t *testing.T) {
	for _, token := range []string{"2020", "1900", "2100"} {
		_, ok := parseDate(token)
		assert.False(t, ok, token)
	}
	d, ok := parseDate("1899")
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 1905, Month: 3, Day: 13}, d)

	d, ok = parseDate("43968")
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 2020, Month: 5, Day: 17}, d)
}

func TestExcelToTime(t *testing.T) {
	tm, ok := excelToTime(1)
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 1900, Month: 1, Day: 1}, civil.DateOf(tm))

	tm, ok = excelToTime(61)
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 1900, Month: 3, Day: 1}, civil.DateOf(tm))

	tm, ok = excelToTime(45000.5)
	require.True(t, ok)
	assert.Equal(t, "2023-03-15 12:00:00", tm.Format("2006-01-02 15:04:05"))

	// 不存在的1900-02-29
	_, ok = excelToTime(60)
	assert.False(t, ok)
}

func TestParseHoraCascade(t *testing.T) {
	cases := []struct {
		token  string
		want   civil.Time
		reason string
	}{
		{"14:30", civil.Time{Hour: 14, Minute: 30}, ""},
		{"0930", civil.Time{Hour: 9, Minute: 30}, ""},
		{"07", civil.Time{Hour: 7}, ""},
		{"14:30:59", civil.Time{Hour: 14, Minute: 30}, ""},
		{"2:15 PM", civil.Time{Hour: 14, Minute: 15}, ""},
		{"2020-05-17 22:05:00", civil.Time{Hour: 22, Minute: 5}, ""},
		{"0.5", civil.Time{Hour: 12}, ""},
		{"43968.75", civil.Time{Hour: 18}, ""},
		{"14.30", civil.Time{}, ReasonUnknownTimeFormat},
		{"1.25", civil.Time{}, ReasonUnknownTimeFormat},
		{"25:00", civil.Time{}, ReasonInvalidTime},
		{"2561", civil.Time{}, ReasonInvalidTime},
		{"99", civil.Time{}, ReasonInvalidTime},
		{"xyz", civil.Time{}, ReasonUnknownTimeFormat},
		{"7", civil.Time{}, ReasonUnknownTimeFormat},
	}
	for _, c := range cases {
		got, reason, ok := parseHora(c.token)
		assert.Equal(t, c.reason == "", ok, c.token)
		assert.Equal(t, c.want, got, c.token)
		assert.Equal(t, c.reason, reason, c.token)
	}
}

func TestCoerceHora(t *testing.T) {
	df := frame(strs("Hora", "14:30", "0930", "07", "xyz", nil))
	tbl, warnings := Coerce(df, config.DefaultDataConfig())

	col, _ := tbl.Col("Hora")
	assert.Equal(t, dataset.Time, col.Kind)
	assert.Equal(t, []string{"14:30", "09:30", "07:00", "", ""},
		[]string{col.Value(0), col.Value(1), col.Value(2), col.Value(3), col.Value(4)})

	// 空值不产生警告
	require.Len(t, warnings, 1)
	assert.Equal(t, "xyz", warnings[0].Token)
	assert.Equal(t, ReasonUnknownTimeFormat, warnings[0].Reason)

	sum, ok := SummarizeHora(tbl, "Hora")
	require.True(t, ok)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 2, sum.Missing)
	assert.InDelta(t, 40.0, sum.Percent, 1e-9)

	_, ok = SummarizeHora(tbl, "Data")
	assert.False(t, ok)
}

func TestCoerceText(t *testing.T) {
	df := frame(strs("Municipio", "Fortaleza", nil))
	tbl, warnings := Coerce(df, config.DefaultDataConfig())
	assert.Empty(t, warnings)

	col, _ := tbl.Col("Municipio")
	assert.Equal(t, dataset.Text, col.Kind)
	assert.Equal(t, "Fortaleza", col.Value(0))
	assert.True(t, col.IsNull(1))
}
