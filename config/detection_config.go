package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// DetectionConfig 检测服务相关配置
type DetectionConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`   // 检测服务地址，如 http://127.0.0.1:8000
	APIKey    string `json:"apiKey" yaml:"apiKey"`       // Bearer 认证密钥
	TimeoutMs int    `json:"timeoutMs" yaml:"timeoutMs"` // 单次检测调用的超时（毫秒）
}

func (d *DetectionConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.Endpoint == "" {
		errs = append(errs, errors.Errorf("检测服务地址不能为空"))
	}
	if d.APIKey == "" {
		errs = append(errs, errors.Errorf("检测服务 API 密钥不能为空"))
	}
	if d.TimeoutMs <= 0 {
		errs = append(errs, errors.Errorf("检测服务超时必须大于 0, 当前值: %d", d.TimeoutMs))
	}
	return errs
}

func NewDefaultDetectionConfig() *DetectionConfig {
	cfg := &DetectionConfig{
		Endpoint:  "http://127.0.0.1:8000",
		APIKey:    os.Getenv("DETECTION_API_KEY"),
		TimeoutMs: 30000,
	}
	if v := os.Getenv("DETECTION_TIMEOUT_MS"); v != "" {
		cfg.TimeoutMs = cast.ToInt(v)
	}
	return cfg
}
