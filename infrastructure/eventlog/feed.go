// Package eventlog 提供面向操作员/面板的分级事件流。
// 与 zap 结构化日志并行：zap 面向排障，eventlog 面向展示。
package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// Level 事件级别。
type Level string

const (
	Info    Level = "INFO"
	Success Level = "SUCCESS"
	Warning Level = "WARNING"
	Error   Level = "ERROR"
)

// Event 单条事件。
type Event struct {
	Time    time.Time
	Level   Level
	Message string
}

// Sink 事件输出通道接口
type Sink interface {
	Emit(Event)
	Name() string
}

// Feed 把事件扇出到所有 Sink。
type Feed struct {
	mu       sync.RWMutex
	sinks    []Sink
	throttle *Throttler
}

// New 创建事件流。
func New(sinks ...Sink) *Feed {
	return &Feed{
		sinks:    sinks,
		throttle: NewThrottler(30 * time.Second),
	}
}

// AddSink 追加输出通道。
func (f *Feed) AddSink(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

// Emit 发出一条事件。
func (f *Feed) Emit(level Level, format string, args ...interface{}) {
	if f == nil {
		return
	}
	ev := Event{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}
	f.mu.RLock()
	sinks := f.sinks
	f.mu.RUnlock()
	for _, s := range sinks {
		s.Emit(ev)
	}
}

// EmitThrottled 按 key 限流发出事件；同 key 在窗口内只发一次。
// 用于每个 tick 都可能重复的告警（如钳价告警）。
func (f *Feed) EmitThrottled(key string, level Level, format string, args ...interface{}) {
	if f == nil {
		return
	}
	if !f.throttle.Allow(key) {
		return
	}
	f.Emit(level, format, args...)
}

func (f *Feed) Infof(format string, args ...interface{})    { f.Emit(Info, format, args...) }
func (f *Feed) Successf(format string, args ...interface{}) { f.Emit(Success, format, args...) }
func (f *Feed) Warnf(format string, args ...interface{})    { f.Emit(Warning, format, args...) }
func (f *Feed) Errorf(format string, args ...interface{})   { f.Emit(Error, format, args...) }

// Throttler 事件限流器
type Throttler struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	interval time.Duration
}

// NewThrottler 创建限流器
func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{
		lastSent: make(map[string]time.Time),
		interval: interval,
	}
}

// Allow 检查是否允许发送（限流）
func (t *Throttler) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	last, exists := t.lastSent[key]
	if !exists || now.Sub(last) >= t.interval {
		t.lastSent[key] = now
		return true
	}
	return false
}

// Reset 重置限流记录
func (t *Throttler) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastSent, key)
}
