package risk

import "time"

// Clock 抽象时间便于测试。
type Clock interface {
	Now() time.Time
}

// ClockFunc 把函数适配成 Clock。
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// RealClock 默认使用系统时间。
var RealClock Clock = ClockFunc(time.Now)
