package eventlog

import (
	"sync"

	"go.uber.org/zap"

	"gate-mm-go/infrastructure/logger"
)

// MemorySink 保留最近 capacity 条事件的环形缓冲（面板消费）。
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
	cap    int
}

// NewMemorySink 创建内存通道；capacity <= 0 时默认 500 条。
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemorySink{cap: capacity}
}

func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cap {
		s.events = s.events[len(s.events)-s.cap:]
	}
}

func (s *MemorySink) Name() string { return "memory" }

// Events 返回事件拷贝，最新的在最后。
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ZapSink 把事件写入结构化日志。SUCCESS 映射为带标记的 Info。
type ZapSink struct {
	log *logger.Logger
}

// NewZapSink 创建 zap 输出通道。
func NewZapSink(log *logger.Logger) *ZapSink {
	return &ZapSink{log: log}
}

func (s *ZapSink) Emit(ev Event) {
	field := zap.String("event_level", string(ev.Level))
	switch ev.Level {
	case Warning:
		s.log.Warn(ev.Message, field)
	case Error:
		s.log.Error(ev.Message, field)
	default:
		s.log.Info(ev.Message, field)
	}
}

func (s *ZapSink) Name() string { return "zap" }
