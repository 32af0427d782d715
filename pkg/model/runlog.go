package model

import (
	"fmt"
	"strings"
	"time"
)

// RunLog 单次运行的累积日志
// 各阶段往里追加带时间戳的文本行，Finalize 时一次性写入主机记录字段
// 替代原实现中的全局可变字符串，由编排器显式传递
type RunLog struct {
	lines []string
	now   func() time.Time
}

func NewRunLog() *RunLog {
	return &RunLog{now: time.Now}
}

// NewRunLogWithClock 注入时钟，测试用
func NewRunLogWithClock(now func() time.Time) *RunLog {
	return &RunLog{now: now}
}

// Appendf 追加一行带时间戳的日志
func (l *RunLog) Appendf(format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", l.now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
}

// Lines 返回按追加顺序排列的日志行
func (l *RunLog) Lines() []string {
	return l.lines
}

func (l *RunLog) Len() int {
	return len(l.lines)
}

// String 拼接为写回字段用的整体文本
func (l *RunLog) String() string {
	return strings.Join(l.lines, "\n")
}
