package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/greensplit/utils/config"
)

// Window 需求统计时间窗口
// 功能：限定参与需求统计的车辆出发时刻范围 [Start, End)
// 说明：End<=Start表示没有上界；零值窗口包含所有记录
type Window struct {
	Start float64 // 起始时刻（秒）
	End   float64 // 结束时刻（秒）
}

// New 根据配置创建时间窗口
func New(c config.ControlWindow) Window {
	return Window{Start: c.Start, End: c.End}
}

// Bounded 是否存在上界
func (w Window) Bounded() bool {
	return w.End > w.Start
}

// Contains 判断时刻t是否落在窗口内
func (w Window) Contains(t float64) bool {
	if t < w.Start {
		return false
	}
	return !w.Bounded() || t < w.End
}

// Duration 窗口长度（秒），无上界时返回0
func (w Window) Duration() float64 {
	if !w.Bounded() {
		return 0
	}
	return w.End - w.Start
}

// String 获取窗口的字符串表示
// 功能：将起止时刻格式化为可读的字符串（HH:MM:SS-HH:MM:SS）
func (w Window) String() string {
	if !w.Bounded() {
		return formatHMS(w.Start) + "-"
	}
	return formatHMS(w.Start) + "-" + formatHMS(w.End)
}

// formatHMS 将秒数转换为HH:MM:SS
// 算法说明：
// 1. 将总秒数转换为小时、分钟、秒
// 2. 格式化为标准时间格式
func formatHMS(t float64) string {
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
