package detect

import (
	"errors"
	"fmt"
)

// 检测调用的三类失败，便于编排器区分处理
// 默认策略下都走降级继续，不中断整次运行

// TimeoutError 检测调用超出配置的时限
type TimeoutError struct {
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("检测调用超时(%s)", e.Timeout)
}

// HTTPError 检测服务返回非 2xx，或请求本身无法送达
type HTTPError struct {
	Status int
	Body   string
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("检测请求失败: %v", e.Err)
	}
	return fmt.Sprintf("检测服务返回 %d: %s", e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ParseError 检测服务响应不是可解析的 JSON
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("检测响应解析失败: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsTimeout 判断是否为超时失败
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
