package window

import (
	"fmt"
	"time"
)

// Window 是一个执行时间窗口。
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow 创建窗口, 开始时刻不得晚于结束时刻。
func NewWindow(start, end time.Time) (Window, error) {
	if start.After(end) {
		return Window{}, fmt.Errorf("window: 开始时刻 %v 晚于结束时刻 %v", start, end)
	}
	return Window{Start: start, End: end}, nil
}

// Duration 返回窗口长度。
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("Window{start=%s, end=%s, duration=%s}",
		w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.Duration())
}
