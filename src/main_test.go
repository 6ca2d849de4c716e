package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CrimeAnalytics/src/config"
	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/processor"
	"CrimeAnalytics/src/storage"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Município", "AIS", "Data", "Hora", "Natureza", "Gênero"},
		{"Fortaleza", "AIS 01", "2020-05-17", "14:30", "Homicidio", "Masculino"},
		{"Sobral", "AIS 02", "2021-06-01", "0930", "Latrocinio", "nan"},
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	violent := filepath.Join(dir, "CVLI.xlsx")
	require.NoError(t, f.SaveAs(violent))

	cfg := config.DefaultConfig()
	cfg.ReportDir = filepath.Join(dir, "reports")
	cfg.SetDatasetPath(dataset.Violent, violent)
	cfg.SetDatasetPath(dataset.Narcotics, filepath.Join(dir, "nada.xlsx"))
	cfg.SetDatasetPath(dataset.Sexual, filepath.Join(dir, "nada.xlsx"))

	logger := storage.NewNopLogger()
	return &app{
		cfg:    cfg,
		dcfg:   config.DefaultDataConfig(),
		logger: logger,
		loader: processor.NewLoader(cfg, nil, logger),
	}
}

func TestViewsCommand(t *testing.T) {
	cmd := newViewsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--kind", "sexual"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "sexual"))

	cmd = newViewsCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--kind", "roubo"})
	assert.Error(t, cmd.Execute())
}

func TestLoadCommandReportsUnavailable(t *testing.T) {
	a := testApp(t)
	cmd := newLoadCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "violent    2 linhas")
	assert.Contains(t, text, "narcotics  indisponível")
	assert.Contains(t, text, "sexual     indisponível")
}

func TestReportCommandJSON(t *testing.T) {
	a := testApp(t)
	cmd := newReportCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--kind", "violent", "--json"})
	require.NoError(t, cmd.Execute())

	var r processor.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, 2, r.Rows)
	assert.Equal(t, 1, r.NullCount("Genero"))
}

func TestRenderCommand(t *testing.T) {
	a := testApp(t)
	out := filepath.Join(t.TempDir(), "violent.xlsx")
	cmd := newRenderCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--kind", "violent", "--all", "--out", out})
	require.NoError(t, cmd.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "violent_natureza")
	assert.Len(t, f.GetSheetList(), 12)

	// 数据集不可用时返回错误
	cmd = newRenderCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--kind", "sexual", "--view", "genero", "--out", filepath.Join(t.TempDir(), "s.json"), "--format", "json"})
	assert.Error(t, cmd.Execute())
}

func TestRenderCommandJSONDefaultOut(t *testing.T) {
	a := testApp(t)
	cmd := newRenderCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--kind", "violent", "--view", "natureza", "--format", "json"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(a.cfg.ReportDir, "violent.json"))
}

func TestLoadCommandFromStdin(t *testing.T) {
	a := testApp(t)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, values := range [][]string{{"Gênero", "Hora"}, {"Feminino", "2300"}, {"Masculino", "07"}} {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().Value = v
		}
	}
	var in bytes.Buffer
	require.NoError(t, f.Write(&in))

	cmd := newLoadCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(&in)
	cmd.SetArgs([]string{"--kind", "sexual", "--path", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sexual     2 linhas, 2 colunas")

	// 标准输入不是工作簿
	cmd = newLoadCmd(a)
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("not a workbook"))
	cmd.SetArgs([]string{"--kind", "sexual", "--path", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sexual     indisponível")
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// runWatch 启动watch, 等待启动时的第一次加载完成
func runWatch(t *testing.T, a *app) (report string, stop func() error) {
	t.Helper()
	report = filepath.Join(a.cfg.ReportDir, "violent.xlsx")

	started := make(chan struct{})
	entries := a.logger.Subscribe()
	go func() {
		for e := range entries {
			if strings.Contains(e, "监控服务已启动") {
				close(started)
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx) }()

	select {
	case <-started:
	case err := <-done:
		t.Fatalf("watch returned early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not start")
	}
	require.FileExists(t, report)

	return report, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("watch did not stop")
			return nil
		}
	}
}

func TestWatchReloadsOnFileChange(t *testing.T) {
	a := testApp(t)
	a.cfg.Watch.Interval = config.Duration(time.Hour)
	report, stop := runWatch(t, a)
	first := modTime(report)

	src := a.cfg.DatasetPath(dataset.Violent)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0644))

	assert.Eventually(t, func() bool {
		return modTime(report).After(first)
	}, 5*time.Second, 20*time.Millisecond)
	assert.NoError(t, stop())
}

func TestWatchReloadsOnSchedule(t *testing.T) {
	a := testApp(t)
	a.cfg.Watch.Interval = config.Duration(time.Second)
	report, stop := runWatch(t, a)
	first := modTime(report)

	assert.Eventually(t, func() bool {
		return modTime(report).After(first)
	}, 5*time.Second, 50*time.Millisecond)
	assert.NoError(t, stop())

	// 停止后不再生成
	last := modTime(report)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, last, modTime(report))
}
