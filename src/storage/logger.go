package storage

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG   LogLevel = iota // 调试信息
	INFO                    // 普通信息
	WARNING                 // 警告信息
	ERROR                   // 错误信息
	FATAL                   // 致命错误(只记录, 不退出进程)
)

// Logger 日志记录器结构体
type Logger struct {
	zl          *zap.Logger
	level       zap.AtomicLevel
	sink        *rotatingSink
	mu          sync.Mutex    // 保护subscribers
	subscribers []chan string // 订阅者通道列表
}

// rotatingSink 在lumberjack外加锁, 以便Reopen时安全切换文件名
type rotatingSink struct {
	mu sync.Mutex
	lj *lumberjack.Logger
}

func (s *rotatingSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lj.Write(p)
}

func (s *rotatingSink) Sync() error { return nil }

func (s *rotatingSink) filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lj.Filename
}

func (s *rotatingSink) rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lj.Rotate()
}

func (s *rotatingSink) reopen(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lj.Close(); err != nil {
		return err
	}
	s.lj.Filename = filename
	return nil
}

func (s *rotatingSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lj.Close()
}

// keepRunning 让FATAL级别只写日志, 由调用方决定是否退出
type keepRunning struct{}

func (keepRunning) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

// NewLogger 创建新的日志记录器
// 参数:
//
//	filename: 日志文件路径, 为空时只输出到终端
//
// 返回值:
//
//	*Logger: 日志记录器实例
//	error: 创建过程中的错误
func NewLogger(filename string) (*Logger, error) {
	if filename != "" {
		// 提前检查文件是否可写, 避免第一次写日志时才报错
		file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		file.Close()
	}

	l := &Logger{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	consoleConfig := encoderConfig
	consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), l.level),
	}
	if filename != "" {
		l.sink = &rotatingSink{lj: &lumberjack.Logger{Filename: filename, MaxSize: 10}}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), l.sink, l.level))
	}

	l.zl = zap.New(zapcore.NewTee(cores...),
		zap.Hooks(l.broadcast),
		zap.WithFatalHook(keepRunning{}),
	)
	return l, nil
}

// NewNopLogger 测试用: 输出丢弃, 但订阅者仍能收到消息
func NewNopLogger() *Logger {
	l := &Logger{level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(io.Discard), l.level)
	l.zl = zap.New(core, zap.Hooks(l.broadcast), zap.WithFatalHook(keepRunning{}))
	return l
}

// SetLevel 设置日志级别: debug, info, warning, error
func (l *Logger) SetLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.level.SetLevel(lvl)
	return nil
}

// SetMaxSize 设置单个日志文件的最大字节数(如 "10 * 1024 * 1024")
func (l *Logger) SetMaxSize(expr string) {
	if l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.lj.MaxSize = megabytes(eval(expr))
}

// Close 刷新并关闭日志文件
func (l *Logger) Close() error {
	_ = l.zl.Sync()
	if l.sink != nil {
		return l.sink.close()
	}
	return nil
}

// Reopen 重新打开一个文件
// 参数：
// filename：新文件的路径
// 返回值：
// error：重建文件时的错误
func (l *Logger) Reopen(filename string) error {
	if l.sink == nil {
		return fmt.Errorf("logger has no file sink")
	}
	return l.sink.reopen(filename)
}

// CheckRotate 文件超过maxSize时轮转
func (l *Logger) CheckRotate(maxSize string) error {
	if l.sink == nil {
		return nil
	}
	info, err := os.Stat(l.sink.filename())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Size() > eval(maxSize) {
		return l.sink.rotate()
	}
	return nil
}

// Log 记录日志方法
// 参数:
//
//	level: 日志级别
//	message: 日志消息内容
//	fields: 结构化字段
func (l *Logger) Log(level LogLevel, message string, fields ...zap.Field) {
	if ce := l.zl.Check(level.zapLevel(), message); ce != nil {
		ce.Write(fields...)
	}
}

// broadcast 通知所有订阅者
func (l *Logger) broadcast(e zapcore.Entry) error {
	entry := fmt.Sprintf("[%s] %s: %s",
		e.Time.Format("2006-01-02 15:04:05"),
		fromZapLevel(e.Level).String(),
		e.Message)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- entry: // 尝试发送日志条目
		default: // 如果通道已满则跳过
		}
	}
	return nil
}

// Subscribe 订阅日志消息
// 返回值:
//
//	<-chan string: 只读通道，用于接收日志消息
func (l *Logger) Subscribe() <-chan string {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 创建带缓冲的通道(容量100)
	ch := make(chan string, 100)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// String 实现LogLevel的String方法
// 返回值:
//
//	string: 日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(lvl zapcore.Level) LogLevel {
	switch {
	case lvl <= zapcore.DebugLevel:
		return DEBUG
	case lvl == zapcore.InfoLevel:
		return INFO
	case lvl == zapcore.WarnLevel:
		return WARNING
	case lvl >= zapcore.FatalLevel:
		return FATAL
	default:
		return ERROR
	}
}

// eval 计算 "10 * 1024 * 1024" 形式的乘法表达式
func eval(expr string) int64 {
	parts := strings.Split(expr, "*")
	var result int64 = 1
	for _, part := range parts {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		result *= num
	}
	return result
}

// megabytes lumberjack的MaxSize单位是MB, 至少为1
func megabytes(n int64) int {
	mb := int((n + 1<<20 - 1) >> 20)
	if mb < 1 {
		return 1
	}
	return mb
}

// 以下是快捷日志方法
func (l *Logger) Debug(msg string, fields ...zap.Field)   { l.Log(DEBUG, msg, fields...) }   // 记录调试信息
func (l *Logger) Info(msg string, fields ...zap.Field)    { l.Log(INFO, msg, fields...) }    // 记录普通信息
func (l *Logger) Warning(msg string, fields ...zap.Field) { l.Log(WARNING, msg, fields...) } // 记录警告信息
func (l *Logger) Error(msg string, fields ...zap.Field)   { l.Log(ERROR, msg, fields...) }   // 记录错误信息
func (l *Logger) Fatal(msg string, fields ...zap.Field)   { l.Log(FATAL, msg, fields...) }   // 记录致命错误
