// monitor.go
package file

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileMonitor 监控数据集文件, 修改时间前进时触发回调
type FileMonitor struct {
	watcher *fsnotify.Watcher
	files   map[string]time.Time // 绝对路径 -> 上次处理的修改时间
	mu      sync.Mutex
}

// NewFileMonitor 为每个文件所在目录注册监听
// 监听目录而不是文件, 这样替换写入(先删后建)也能被捕获
func NewFileMonitor(paths ...string) (*FileMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	m := &FileMonitor{
		watcher: watcher,
		files:   make(map[string]time.Time, len(paths)),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		if info, err := os.Stat(abs); err == nil {
			m.files[abs] = info.ModTime()
		} else {
			m.files[abs] = time.Time{}
		}

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return m, nil
}

// Watch 阻塞直到ctx取消或监听出错, handler收到变化的文件路径
func (m *FileMonitor) Watch(ctx context.Context, handler func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if path, changed := m.changed(event.Name); changed {
				handler(path)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// changed 判断文件是否是被监控的文件并且修改时间前进了
func (m *FileMonitor) changed(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.files[abs]
	if !ok {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false
	}
	if !info.ModTime().After(last) {
		return "", false
	}
	m.files[abs] = info.ModTime()
	return abs, true
}

// Close 停止监听
func (m *FileMonitor) Close() error {
	return m.watcher.Close()
}

// SetupSignalHandler 收到SIGINT/SIGTERM时取消ctx
// SIGHUP交给onHangup处理(例如重新打开日志文件), ctx结束后停止接收信号
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onHangup func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigChan:
				if sig == syscall.SIGHUP {
					if onHangup != nil {
						onHangup()
					}
					continue
				}
				fmt.Printf("\nReceived signal: %v, shutting down...\n", sig)
				cancel()
				return
			}
		}
	}()
}
