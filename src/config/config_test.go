package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"CrimeAnalytics/src/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, dcfg, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "Entorpecente_2009-a-2024.xlsx", cfg.DatasetPath(dataset.Narcotics))
	assert.Equal(t, 10*time.Minute, time.Duration(cfg.Watch.Interval))
	assert.Equal(t, "app.log", cfg.LogName)
	assert.Equal(t, "Data", dcfg.DateColumn)
	assert.Equal(t, "Hora", dcfg.TimeColumn)
	assert.Contains(t, dcfg.Sentinels, "None")
}

func TestLoadConfigFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{
		"datasets": {"violent": "dados/cvli.xlsx"},
		"sheet_name": "Planilha1",
		"header_row": 1,
		"watch": {"interval": "30s", "cron": "@hourly"}
	}`)
	writeFile(t, dir, "dataconfig.json", `{
		"numeric_columns": ["Peso"],
		"csv": {"delimiter": ",", "encoding": "latin1"}
	}`)

	cfg, dcfg, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "dados/cvli.xlsx", cfg.DatasetPath(dataset.Violent))
	// 未配置的数据集使用默认路径
	assert.Equal(t, "Crimes-Sexuais_2009-a-2024.xlsx", cfg.DatasetPath(dataset.Sexual))
	assert.Equal(t, "Planilha1", cfg.SheetName)
	assert.Equal(t, 1, cfg.HeaderRow)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Watch.Interval))
	assert.Equal(t, "@hourly", cfg.Watch.Cron)

	assert.True(t, dcfg.IsNumeric("Peso"))
	assert.False(t, dcfg.IsNumeric("Idade"))
	assert.Equal(t, "latin1", dcfg.CSV.Encoding)
	// 未出现的字段保留默认值
	assert.Equal(t, "Data", dcfg.DateColumn)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRIMES_DATASETS_NARCOTICS", "/tmp/entorpecentes.xlsx")
	t.Setenv("CRIMES_WATCH_INTERVAL", "2m")
	t.Setenv("CRIMES_LOG_LEVEL", "debug")

	cfg, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/entorpecentes.xlsx", cfg.DatasetPath(dataset.Narcotics))
	assert.Equal(t, 2*time.Minute, time.Duration(cfg.Watch.Interval))
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"datasets": `)
	writeFile(t, dir, "dataconfig.json", `{"numeric_columns": 3}`)

	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "配置加载遇到多个错误")
}

func TestColumnKind(t *testing.T) {
	dcfg := DefaultDataConfig()
	assert.Equal(t, dataset.Numeric, dcfg.ColumnKind("Quantidade (Kg)"))
	assert.Equal(t, dataset.Date, dcfg.ColumnKind("Data"))
	assert.Equal(t, dataset.Time, dcfg.ColumnKind("Hora"))
	assert.Equal(t, dataset.Text, dcfg.ColumnKind("Municipio"))
}

func TestSetDatasetPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetDatasetPath(dataset.Sexual, "outro.xlsx")
	assert.Equal(t, "outro.xlsx", cfg.DatasetPath(dataset.Sexual))
}
