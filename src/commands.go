package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"CrimeAnalytics/src/config"
	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/datasource/file"
	"CrimeAnalytics/src/processor"
	"CrimeAnalytics/src/utils"
	"CrimeAnalytics/src/views"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// kindsFromFlag 为空时返回全部数据集
func kindsFromFlag(s string) ([]dataset.Kind, error) {
	if s == "" {
		return dataset.Kinds(), nil
	}
	kind, err := dataset.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []dataset.Kind{kind}, nil
}

func newLoadCmd(a *app) *cobra.Command {
	var kindFlag, path string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Carrega e limpa um ou todos os datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" && kindFlag == "" {
				return fmt.Errorf("--path requires --kind")
			}
			kinds, err := kindsFromFlag(kindFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				res, err := a.load(cmd.InOrStdin(), kind, path)
				if err != nil {
					// 和界面一样: 提示无法加载, 继续下一个数据集
					a.logger.Warning("无法加载数据集", zap.String("dataset", string(kind)), zap.Error(err))
					fmt.Fprintf(out, "%-10s indisponível: %v\n", kind, err)
					continue
				}
				printSummary(out, kind, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "narcotics | violent | sexual (padrão: todos)")
	cmd.Flags().StringVar(&path, "path", "", "caminho do arquivo, substitui o configurado ('-' lê xlsx da entrada padrão)")
	return cmd
}

// load path为"-"时从stdin读取工作簿
func (a *app) load(stdin io.Reader, kind dataset.Kind, path string) (*processor.LoadResult, error) {
	if path != "-" {
		return a.loader.Load(kind, path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("读取标准输入失败: %w", err)
	}
	return a.loader.LoadBytes(kind, "stdin", data)
}

func printSummary(w io.Writer, kind dataset.Kind, res *processor.LoadResult) {
	fmt.Fprintf(w, "%-10s %d linhas, %d colunas, %d avisos de conversão\n",
		kind, res.Table.Nrow(), res.Table.Ncol(), len(res.Warnings))
	if res.Hora != nil {
		fmt.Fprintf(w, "%-10s Hora: %d de %d sem horário (%.2f%%)\n",
			"", res.Hora.Missing, res.Hora.Total, res.Hora.Percent)
	}
}

func newViewsCmd() *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:               "views",
		Short:             "Lista os gráficos disponíveis",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindsFromFlag(kindFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				fmt.Fprintf(out, "%s (%s)\n", kind, kind.Label())
				for _, v := range views.Catalogue(kind) {
					fmt.Fprintf(out, "  %-16s %s\n", v.Key, v.Title)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "narcotics | violent | sexual (padrão: todos)")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var kindFlag, key, out, format string
	var all bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Gera gráficos de um dataset em xlsx ou json",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dataset.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			selected := views.Catalogue(kind)
			if !all {
				if key == "" {
					return fmt.Errorf("use --view <key> ou --all")
				}
				v, err := views.Lookup(kind, key)
				if err != nil {
					return err
				}
				selected = []views.View{v}
			}

			var tbl *dataset.Table
			if res, err := a.loader.Load(kind, ""); err == nil {
				tbl = res.Table
			}
			if out == "" {
				out = filepath.Join(a.cfg.ReportDir, string(kind)+"."+format)
			}
			return a.render(kind, tbl, selected, format, out)
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "narcotics | violent | sexual")
	cmd.Flags().StringVar(&key, "view", "", "chave do gráfico (ver 'views')")
	cmd.Flags().BoolVar(&all, "all", false, "todos os gráficos do dataset")
	cmd.Flags().StringVar(&out, "out", "", "arquivo de saída (padrão: <report_dir>/<kind>.<format>)")
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx | json")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

// render 输出一组图表, 没有数据的图表只记录警告
func (a *app) render(kind dataset.Kind, tbl *dataset.Table, selected []views.View, format, out string) error {
	if tbl == nil {
		return fmt.Errorf("%s: %w", kind, views.ErrDatasetUnavailable)
	}
	if err := file.EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}

	var (
		surface views.Surface
		finish  func() error
	)
	switch strings.ToLower(format) {
	case "xlsx":
		xs := views.NewExcelSurface(out)
		surface = xs
		finish = func() error {
			defer xs.Close()
			return xs.Save()
		}
	case "json":
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		surface = views.NewJSONSurface(f)
		finish = f.Close
	default:
		return fmt.Errorf("formato desconhecido %q", format)
	}

	for _, v := range selected {
		if err := views.Render(surface, v, tbl); err != nil {
			if errors.Is(err, views.ErrNoData) {
				a.logger.Warning("gráfico sem dados", zap.String("view", v.Key), zap.Error(err))
				continue
			}
			_ = finish()
			return err
		}
	}
	if err := finish(); err != nil {
		return err
	}
	a.logger.Info("gráficos gerados",
		zap.String("dataset", string(kind)),
		zap.Int("views", len(selected)),
		zap.String("out", out))
	return nil
}

func newExportCmd(a *app) *cobra.Command {
	var kindFlag, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta a tabela limpa para xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dataset.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			res, err := a.loader.Load(kind, "")
			if err != nil {
				return err
			}
			if err := utils.SaveToExcel(res.Table, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "处理后的数据已保存到: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "narcotics | violent | sexual")
	cmd.Flags().StringVar(&out, "out", "", "arquivo xlsx de saída")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var kindFlag string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Mostra o relatório de qualidade dos dados",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dataset.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			res, err := a.loader.Load(kind, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return res.Report.WriteJSON(out)
			}
			writeReport(out, res.Report)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "narcotics | violent | sexual")
	cmd.Flags().BoolVar(&asJSON, "json", false, "saída em JSON")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func writeReport(w io.Writer, r *processor.Report) {
	fmt.Fprintf(w, "%s: %d linhas, %d colunas\n", r.Dataset, r.Rows, r.Columns)
	fmt.Fprintln(w, "Valores nulos:")
	if len(r.Nulls) == 0 {
		fmt.Fprintln(w, "  nenhum")
	}
	for _, c := range r.Nulls {
		fmt.Fprintf(w, "  %-28s %d\n", c.Column, c.Count)
	}
	fmt.Fprintln(w, "Valores distintos:")
	for _, c := range r.Distinct {
		fmt.Fprintf(w, "  %-28s %d\n", c.Column, c.Count)
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recarrega e gera os gráficos quando os arquivos mudam ou periodicamente",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval > 0 {
				a.cfg.Watch.Interval = config.Duration(interval)
			}
			return a.watch(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "intervalo de recarga (padrão: watch.interval)")
	return cmd
}

// watch 文件变化或定时触发时重新加载全部数据集并生成图表, 同一时间只有一次加载
func (a *app) watch(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var mu sync.Mutex
	reload := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		a.logger.Info("重新加载数据集", zap.String("trigger", reason))
		for kind, res := range a.loader.LoadAll() {
			out := filepath.Join(a.cfg.ReportDir, string(kind)+".xlsx")
			if err := a.render(kind, res.Table, views.Catalogue(kind), "xlsx", out); err != nil {
				a.logger.Error("生成图表失败", zap.String("dataset", string(kind)), zap.Error(err))
			}
		}
	}

	file.SetupSignalHandler(ctx, cancel, func() {
		if err := a.logger.Reopen(a.cfg.LogName); err != nil {
			a.logger.Error("重新打开日志失败", zap.Error(err))
		}
	})

	paths := make([]string, 0, len(dataset.Kinds()))
	for _, kind := range dataset.Kinds() {
		paths = append(paths, a.cfg.DatasetPath(kind))
	}
	monitor, err := file.NewFileMonitor(paths...)
	if err != nil {
		return fmt.Errorf("创建文件监控失败: %w", err)
	}
	defer monitor.Close()

	// 设置定时任务
	c := cron.New()
	cronSpec := a.cfg.Watch.Cron
	if cronSpec == "" {
		cronSpec = fmt.Sprintf("@every %s", a.cfg.Watch.Interval)
	}
	err = c.AddFunc(cronSpec, func() {
		reload("schedule")
		if ctx.Err() != nil {
			return
		}
		if err := a.logger.CheckRotate(a.cfg.LogMaxSize); err != nil {
			a.logger.Error("日志轮转失败", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("创建定时任务失败: %w", err)
	}

	reload("startup")
	c.Start()

	a.logger.Info("监控服务已启动, 按Ctrl+C退出",
		zap.String("schedule", cronSpec),
		zap.Strings("files", paths))

	err = monitor.Watch(ctx, func(path string) {
		reload("file:" + filepath.Base(path))
	})
	cancel()
	c.Stop()
	// 等待正在进行的加载结束, 之后的触发都会被跳过
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		return fmt.Errorf("文件监控错误: %w", err)
	}
	a.logger.Info("监控服务已停止")
	return nil
}
