package processor

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(cols ...series.Series) *dataframe.DataFrame {
	df := dataframe.New(cols...)
	return &df
}

func strs(name string, values ...interface{}) series.Series {
	return series.New(values, series.String, name)
}

func TestNormalizeNames(t *testing.T) {
	df := frame(
		strs(" Município ", "Fortaleza"),
		strs("Raça da Vítima", "Parda"),
		strs("Dia da Semana\t", "Domingo"),
	)

	out := Normalize(df)
	require.NotNil(t, out)
	assert.Equal(t, []string{"Municipio", "Raca da Vitima", "Dia da Semana"}, out.Names())
	for _, name := range out.Names() {
		for _, r := range name {
			assert.True(t, r >= 0x20 && r <= 0x7E, "name %q has rune %U", name, r)
		}
	}
}

func TestNormalizeTrimsValues(t *testing.T) {
	df := frame(
		strs("Municipio", "  Fortaleza ", nil, "Sobral\n"),
		series.New([]int{1, 2, 3}, series.Int, "AIS"),
	)

	out := Normalize(df)
	col := out.Col("Municipio")
	assert.Equal(t, "Fortaleza", col.Elem(0).String())
	assert.True(t, col.Elem(1).IsNA())
	assert.Equal(t, "Sobral", col.Elem(2).String())
	// 非字符串列保持原样
	assert.Equal(t, series.Int, out.Col("AIS").Type())
	assert.Equal(t, []int{1, 2, 3}, mustInts(t, out.Col("AIS")))
}

func mustInts(t *testing.T, s series.Series) []int {
	t.Helper()
	v, err := s.Int()
	require.NoError(t, err)
	return v
}

func TestNormalizeIdempotent(t *testing.T) {
	df := frame(
		strs("Município", " a ", "b"),
		strs("Hora  ", "14:30", " 0930 "),
		strs("Gênero", "Masculino ", nil),
	)

	once := Normalize(df)
	twice := Normalize(once)
	assert.Equal(t, once.Names(), twice.Names())
	for _, name := range once.Names() {
		assert.Equal(t, once.Col(name).Records(), twice.Col(name).Records())
		assert.Equal(t, once.Col(name).IsNaN(), twice.Col(name).IsNaN())
	}
}

func TestNormalizeCollisionsKeepFirst(t *testing.T) {
	df := frame(
		strs("Município", "primeiro"),
		strs("Municipio", "segundo"),
		strs("AIS", "AIS 01"),
	)

	collisions := NameCollisions(df.Names())
	require.Len(t, collisions, 1)
	assert.Equal(t, NameCollision{Normalized: "Municipio", Kept: "Município", Dropped: "Municipio"}, collisions[0])

	out := Normalize(df)
	assert.Equal(t, []string{"Municipio", "AIS"}, out.Names())
	assert.Equal(t, "primeiro", out.Col("Municipio").Elem(0).String())
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, ReplaceSentinels(nil, nil))
	tbl, warnings := Coerce(nil, nil)
	assert.Nil(t, tbl)
	assert.Nil(t, warnings)
	assert.Nil(t, Validate(nil))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Escolaridade da Vitima", NormalizeName("Escolaridade da Vítima"))
	assert.Equal(t, "Quantidade (Kg)", NormalizeName(" Quantidade (Kg) "))
	assert.Equal(t, "", NormalizeName("日期"))
}
