package main

import (
	"fmt"
	"os"
	"runtime"

	"CrimeAnalytics/src/config"
	"CrimeAnalytics/src/processor"
	"CrimeAnalytics/src/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app 命令共享的配置, 日志和加载器
type app struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
	loader *processor.Loader
}

func (a *app) init(jsonFolder, jsonFile, dataJsonFile string) error {
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warning("日志级别无效, 使用info", zap.String("level", cfg.LogLevel))
	}
	logger.SetMaxSize(cfg.LogMaxSize)

	a.cfg, a.dcfg, a.logger = cfg, dcfg, logger
	a.loader = processor.NewLoader(cfg, dcfg, logger)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func main() {
	var jsonFolder, jsonFile, dataJsonFile string
	a := &app{}

	root := &cobra.Command{
		Use:   "crimestats",
		Short: "Limpeza e gráficos dos dados de segurança pública",
		Long: `crimestats carrega as planilhas de entorpecentes, crimes violentos e crimes sexuais,
normaliza colunas e valores, converte datas e horários e gera os gráficos descritivos.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(jsonFolder, jsonFile, dataJsonFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&jsonFolder, "config-dir", "./config", "配置文件目录")
	root.PersistentFlags().StringVar(&jsonFile, "config", "config.json", "应用配置文件名")
	root.PersistentFlags().StringVar(&dataJsonFile, "data-config", "dataconfig.json", "数据列配置文件名")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// 不需要加载配置
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("crimestats v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(
		newLoadCmd(a),
		newViewsCmd(),
		newRenderCmd(a),
		newExportCmd(a),
		newReportCmd(a),
		newWatchCmd(a),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
