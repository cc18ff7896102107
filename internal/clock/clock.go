package clock

import (
	"fmt"
	"sync"
	"time"
)

// Clock 提供当前时间与本地日界（当日零点），所有每日逻辑都依赖它。
type Clock interface {
	Now() time.Time
	StartOfToday() time.Time
}

// ZoneClock 以固定 IANA 时区计算真实时间与日界。
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock 按时区名构造 ZoneClock，时区无法加载时返回错误。
func NewZoneClock(zone string) (*ZoneClock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", zone, err)
	}
	return &ZoneClock{loc: loc}, nil
}

// Now 返回配置时区下的当前时间。
func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// StartOfToday 返回配置时区下今天的零点。
// 通过 time.Date 在时区内重建零点，夏令时切换由时区数据库处理。
func (c *ZoneClock) StartOfToday() time.Time {
	now := c.Now()
	return StartOfDay(now)
}

// StartOfDay 返回 t 所在时区中 t 当天的零点。
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FakeClock 是测试用的确定性时钟。
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock 以指定起点构造 FakeClock。
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

// Now 返回当前假时间。
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// StartOfToday 返回假时间当天的零点。
func (c *FakeClock) StartOfToday() time.Time {
	return StartOfDay(c.Now())
}

// Set 直接设置假时间。
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance 将假时间向前推进 d。
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
