package utils

import (
	"path/filepath"
	"testing"

	"CrimeAnalytics/src/dataset"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"Peso", "Idade"}, "Idade"))
	assert.False(t, Contains([]int{1, 2}, 3))
}

func TestMissingColumns(t *testing.T) {
	names := []string{"Municipio", "AIS", "Data"}
	assert.Equal(t, []string{"Hora"}, MissingColumns(names, []string{"AIS", "Hora", "Data"}))
	assert.Nil(t, MissingColumns(names, []string{"AIS"}))
}

func TestSaveToExcel(t *testing.T) {
	idade := dataset.NewColumn("Idade", dataset.Numeric, 2)
	idade.SetNumber(0, 34)
	data := dataset.NewColumn("Data", dataset.Date, 2)
	data.SetDate(0, civil.Date{Year: 2020, Month: 5, Day: 17})
	data.SetDate(1, civil.Date{Year: 2021, Month: 1, Day: 2})
	hora := dataset.NewColumn("Hora", dataset.Time, 2)
	hora.SetTime(1, civil.Time{Hour: 7})

	tbl, err := dataset.NewTable(dataset.Violent, "x.xlsx", idade, data, hora)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, SaveToExcel(tbl, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("violent")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Idade", "Data", "Hora"}, rows[0])
	assert.Equal(t, []string{"34", "2020-05-17"}, rows[1])
	assert.Equal(t, []string{"", "2021-01-02", "07:00"}, rows[2])

	assert.Error(t, SaveToExcel(nil, path))
}
