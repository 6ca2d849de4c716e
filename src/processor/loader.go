package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"CrimeAnalytics/src/config"
	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/datasource/file"
	"CrimeAnalytics/src/storage"
	"CrimeAnalytics/src/utils"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// LoadResult 一次加载的结果, 调用方独占Table
type LoadResult struct {
	Table      *dataset.Table
	Report     *Report
	Warnings   []CoercionWarning
	Hora       *HoraSummary
	Collisions []NameCollision
}

// Loader 读取数据集并执行完整的清洗流程, 不在两次加载之间保留状态
type Loader struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
}

func NewLoader(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) *Loader {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if dcfg == nil {
		dcfg = config.DefaultDataConfig()
	}
	if logger == nil {
		logger = storage.NewNopLogger()
	}
	return &Loader{cfg: cfg, dcfg: dcfg, logger: logger}
}

// Load 读取并清洗一个数据集, path为空时使用配置中的路径
// 失败时返回 (nil, *LoadFailure)
func (l *Loader) Load(kind dataset.Kind, path string) (*LoadResult, error) {
	if path == "" {
		path = l.cfg.DatasetPath(kind)
	}
	l.logger.Info("加载数据集", zap.String("dataset", string(kind)), zap.String("path", path))

	raw, err := l.read(path)
	if err != nil {
		return nil, l.fail(kind, path, classify(err), err)
	}
	return l.Process(kind, path, &raw), nil
}

// LoadBytes 从内存中的工作簿加载(tealeg/xlsx)
func (l *Loader) LoadBytes(kind dataset.Kind, name string, data []byte) (*LoadResult, error) {
	raw, err := file.ReadXLSXBytes(data, l.cfg.SheetName, l.cfg.HeaderRow)
	if err != nil {
		return nil, l.fail(kind, name, classify(err), err)
	}
	return l.Process(kind, name, &raw), nil
}

// LoadAll 依次加载全部数据集, 失败的数据集只记录警告, 不影响其他数据集
func (l *Loader) LoadAll() map[dataset.Kind]*LoadResult {
	results := make(map[dataset.Kind]*LoadResult, len(dataset.Kinds()))
	for _, kind := range dataset.Kinds() {
		res, err := l.Load(kind, "")
		if err != nil {
			l.logger.Warning("无法加载数据集",
				zap.String("dataset", string(kind)),
				zap.String("label", kind.Label()),
				zap.Error(err))
			continue
		}
		results[kind] = res
	}
	return results
}

// Process 对原始DataFrame执行 Normalize -> 空值替换 -> 类型转换 -> 验证
func (l *Loader) Process(kind dataset.Kind, source string, raw *dataframe.DataFrame) *LoadResult {
	if raw == nil {
		return nil
	}

	res := &LoadResult{Collisions: NameCollisions(raw.Names())}
	for _, c := range res.Collisions {
		l.logger.Warning("列名冲突, 保留第一次出现的列",
			zap.String("dataset", string(kind)),
			zap.String("column", c.Normalized),
			zap.String("kept", c.Kept),
			zap.String("dropped", c.Dropped))
	}

	df := Normalize(raw)
	df = ReplaceSentinels(df, l.dcfg.Sentinels)
	res.Table, res.Warnings = Coerce(df, l.dcfg)
	res.Table.Kind = kind
	res.Table.Source = source

	if missing := utils.MissingColumns(res.Table.Names(), kind.ExpectedColumns()); len(missing) > 0 {
		l.logger.Warning("缺少图表需要的列",
			zap.String("dataset", string(kind)),
			zap.Strings("columns", missing))
	}

	for _, w := range res.Warnings {
		l.logger.Debug("单元格转换失败",
			zap.String("column", w.Column),
			zap.Int("row", w.Row),
			zap.String("token", w.Token),
			zap.String("reason", w.Reason))
	}
	if len(res.Warnings) > 0 {
		l.logger.Warning("部分单元格无法转换, 已置为空",
			zap.String("dataset", string(kind)),
			zap.Int("warnings", len(res.Warnings)))
	}

	if h, ok := SummarizeHora(res.Table, l.dcfg.TimeColumn); ok {
		res.Hora = &h
		h.Log(l.logger)
	}

	res.Report = Validate(res.Table)
	res.Report.Log(l.logger)
	l.logger.Info("数据集加载完成",
		zap.String("dataset", string(kind)),
		zap.Int("rows", res.Table.Nrow()),
		zap.Int("columns", res.Table.Ncol()))
	return res
}

func (l *Loader) read(path string) (dataframe.DataFrame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if info.IsDir() {
		return dataframe.DataFrame{}, fmt.Errorf("%s is a directory: %w", path, os.ErrPermission)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return file.ReadCSV(path, file.CSVOptions{
			Delimiter: l.dcfg.CSV.Delimiter,
			Encoding:  l.dcfg.CSV.Encoding,
			HeaderRow: l.cfg.HeaderRow,
		})
	}
	return file.ReadXLSX(path, l.cfg.SheetName, l.cfg.HeaderRow)
}

func (l *Loader) fail(kind dataset.Kind, path string, reason FailureReason, err error) error {
	failure := &LoadFailure{Kind: kind, Path: path, Reason: reason, Err: err}
	l.logger.Error("数据集加载失败",
		zap.String("dataset", string(kind)),
		zap.String("path", path),
		zap.String("reason", string(reason)),
		zap.Error(err))
	return failure
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ReasonMissing
	case errors.Is(err, os.ErrPermission):
		return ReasonUnreadable
	case errors.Is(err, file.ErrNoHeader):
		return ReasonEmpty
	default:
		return ReasonMalformed
	}
}
