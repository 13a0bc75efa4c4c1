package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听配置文件变化并暂存新配置。
// 暂存的配置不影响正在运行的会话；下次启动时通过 Staged 取用。
type Watcher struct {
	path     string
	cooldown time.Duration

	mu         sync.RWMutex
	staged     *AppConfig
	lastReload time.Time
	watcher    *fsnotify.Watcher
	doneChan   chan struct{}
	started    bool
}

// NewWatcher 创建配置监听器。
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		cooldown: 2 * time.Second,
		watcher:  fsw,
		doneChan: make(chan struct{}),
	}, nil
}

// Start 开始监听；新配置校验通过后暂存，onStaged 可为 nil。
func (w *Watcher) Start(ctx context.Context, onStaged func(AppConfig)) error {
	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.loop(ctx, onStaged)
	return nil
}

// Stop 停止监听。未成功 Start 过也可安全调用。
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if started {
		<-w.doneChan
	}
	return err
}

// Staged 取出暂存的配置；没有新配置时返回 false。取出后清空。
func (w *Watcher) Staged() (AppConfig, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.staged == nil {
		return AppConfig{}, false
	}
	cfg := *w.staged
	w.staged = nil
	return cfg, true
}

func (w *Watcher) loop(ctx context.Context, onStaged func(AppConfig)) {
	defer close(w.doneChan)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.handleChange(onStaged)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// 监听错误不致命，继续等待下一个事件。
		}
	}
}

func (w *Watcher) handleChange(onStaged func(AppConfig)) {
	w.mu.Lock()
	if time.Since(w.lastReload) < w.cooldown {
		w.mu.Unlock()
		return
	}
	w.lastReload = time.Now()
	w.mu.Unlock()

	cfg, err := LoadWithEnvOverrides(w.path)
	if err != nil {
		// 配置非法则丢弃，保留上一份暂存。
		return
	}

	w.mu.Lock()
	w.staged = &cfg
	w.mu.Unlock()

	if onStaged != nil {
		onStaged(cfg)
	}
}
