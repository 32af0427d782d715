package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// HostConfig 主机平台（记录管理系统）API 配置
type HostConfig struct {
	BaseURL         string `json:"baseUrl" yaml:"baseUrl"`                 // 平台 API 根地址
	APIKey          string `json:"apiKey" yaml:"apiKey"`                   // 平台 API 密钥
	APIVersion      string `json:"apiVersion" yaml:"apiVersion"`           // 请求体中携带的 ApiVersion
	ChildCollection string `json:"childCollection" yaml:"childCollection"` // 子记录所在集合标识
	TimeoutMs       int    `json:"timeoutMs" yaml:"timeoutMs"`             // 平台调用的固定超时（毫秒），短于检测超时
}

func (h *HostConfig) Validate() []error {
	var errs = make([]error, 0)
	if h.BaseURL == "" {
		errs = append(errs, errors.Errorf("主机平台地址不能为空"))
	}
	if h.APIKey == "" {
		errs = append(errs, errors.Errorf("主机平台 API 密钥不能为空"))
	}
	if h.ChildCollection == "" {
		errs = append(errs, errors.Errorf("子记录集合标识不能为空"))
	}
	if h.TimeoutMs <= 0 {
		errs = append(errs, errors.Errorf("主机平台超时必须大于 0, 当前值: %d", h.TimeoutMs))
	}
	return errs
}

func NewDefaultHostConfig() *HostConfig {
	cfg := &HostConfig{
		APIKey:     os.Getenv("HOST_API_KEY"),
		APIVersion: "1.1",
		TimeoutMs:  10000,
	}
	if v := os.Getenv("HOST_TIMEOUT_MS"); v != "" {
		cfg.TimeoutMs = cast.ToInt(v)
	}
	return cfg
}
