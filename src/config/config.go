package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"CrimeAnalytics/src/dataset"
	"CrimeAnalytics/src/utils"

	"github.com/goccy/go-json"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix 环境变量前缀, 例如 CRIMES_DATASETS_NARCOTICS
const EnvPrefix = "CRIMES"

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Datasets struct {
		Narcotics string `json:"narcotics" envconfig:"NARCOTICS"` // 毒品缉获数据文件
		Violent   string `json:"violent" envconfig:"VIOLENT"`     // 暴力犯罪数据文件
		Sexual    string `json:"sexual" envconfig:"SEXUAL"`       // 性犯罪数据文件
	} `json:"datasets"`

	SheetName  string `json:"sheet_name" envconfig:"SHEET_NAME"` // 为空时读取第一个工作表
	HeaderRow  int    `json:"header_row" envconfig:"HEADER_ROW"` // 标题行(从0开始)
	LogName    string `json:"log_name" envconfig:"LOG_NAME"`
	LogLevel   string `json:"log_level" envconfig:"LOG_LEVEL"`
	LogMaxSize string `json:"log_max_size" envconfig:"LOG_MAX_SIZE"`
	ReportDir  string `json:"report_dir" envconfig:"REPORT_DIR"` // 图表输出目录

	Watch struct {
		Interval Duration `json:"interval" envconfig:"INTERVAL"` // 定时重新加载的间隔
		Cron     string   `json:"cron" envconfig:"CRON"`         // 自定义cron表达式, 优先于Interval
	} `json:"watch"`
}

// DataConfig 列类型与清洗规则
type DataConfig struct {
	NumericColumns []string `json:"numeric_columns"`
	DateColumn     string   `json:"date_column"`
	TimeColumn     string   `json:"time_column"`
	Sentinels      []string `json:"sentinels"`
	CSV            struct {
		Delimiter string `json:"delimiter"`
		Encoding  string `json:"encoding"` // utf-8 | latin1
	} `json:"csv"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

// DefaultConfig 没有配置文件时使用的默认值
func DefaultConfig() *Config {
	cfg := &Config{
		LogName:    "app.log",
		LogLevel:   "info",
		LogMaxSize: "10 * 1024 * 1024",
		ReportDir:  "reports",
	}
	cfg.Datasets.Narcotics = dataset.Narcotics.DefaultPath()
	cfg.Datasets.Violent = dataset.Violent.DefaultPath()
	cfg.Datasets.Sexual = dataset.Sexual.DefaultPath()
	cfg.Watch.Interval = Duration(10 * time.Minute)
	return cfg
}

// DefaultDataConfig 默认的列配置
func DefaultDataConfig() *DataConfig {
	dcfg := &DataConfig{
		NumericColumns: []string{"Peso", "Idade", "Idade da Vitima", "Quantidade (Kg)"},
		DateColumn:     "Data",
		TimeColumn:     "Hora",
		Sentinels:      []string{"", "nan", "NaN", "NULL", "null", "None", "none"},
	}
	dcfg.CSV.Delimiter = ";"
	dcfg.CSV.Encoding = "utf-8"
	return dcfg
}

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	// 环境变量覆盖文件配置
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	return cfg, dcfg, nil
}

// readFile 文件不存在时返回nil, 由调用方使用默认值
func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			errChan <- fmt.Errorf("解析Config失败: %w", err)
			return
		}
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultDataConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, dcfg); err != nil {
			errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
			return
		}
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// DatasetPath 返回某类数据集的文件路径
func (c *Config) DatasetPath(kind dataset.Kind) string {
	mu.RLock()
	defer mu.RUnlock()
	var p string
	switch kind {
	case dataset.Narcotics:
		p = c.Datasets.Narcotics
	case dataset.Violent:
		p = c.Datasets.Violent
	case dataset.Sexual:
		p = c.Datasets.Sexual
	}
	if p == "" {
		p = kind.DefaultPath()
	}
	return p
}

// SetDatasetPath 调用方覆盖默认路径
func (c *Config) SetDatasetPath(kind dataset.Kind, path string) {
	mu.Lock()
	defer mu.Unlock()
	switch kind {
	case dataset.Narcotics:
		c.Datasets.Narcotics = path
	case dataset.Violent:
		c.Datasets.Violent = path
	case dataset.Sexual:
		c.Datasets.Sexual = path
	}
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Decode(s)
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Decode 实现envconfig.Decoder接口
func (d *Duration) Decode(value string) error {
	dur, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// IsNumeric 判断列是否声明为数值列
func (dc *DataConfig) IsNumeric(colName string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return utils.Contains(dc.NumericColumns, colName)
}

// ColumnKind 按列名推断列类型
func (dc *DataConfig) ColumnKind(colName string) dataset.ColumnKind {
	switch {
	case dc.IsNumeric(colName):
		return dataset.Numeric
	case colName == dc.DateColumn:
		return dataset.Date
	case colName == dc.TimeColumn:
		return dataset.Time
	default:
		return dataset.Text
	}
}
