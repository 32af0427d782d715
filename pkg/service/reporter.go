package service

import (
	"context"

	"go.uber.org/zap"
)

// Reporter 把运行期错误上报到主机平台的错误通道
type Reporter interface {
	Report(ctx context.Context, stage string, err error)
}

// zapReporter 默认实现，仅落到进程日志
type zapReporter struct{}

func NewZapReporter() Reporter {
	return zapReporter{}
}

func (zapReporter) Report(_ context.Context, stage string, err error) {
	zap.S().Errorw("流水线阶段失败", "stage", stage, "error", err)
}
