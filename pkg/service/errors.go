package service

import (
	"errors"
	"fmt"
)

// ResolverQueryError 子记录查询调用本身失败
// 与"查询结果为空"不同，后者是合法的创建路径
type ResolverQueryError struct {
	ParentID string
	Err      error
}

func (e *ResolverQueryError) Error() string {
	return fmt.Sprintf("父记录 %s 的子记录查询失败: %v", e.ParentID, e.Err)
}

func (e *ResolverQueryError) Unwrap() error {
	return e.Err
}

func IsResolverQueryError(err error) bool {
	var re *ResolverQueryError
	return errors.As(err, &re)
}

// WriteBackError 写回主机平台失败
type WriteBackError struct {
	RecordID string
	Err      error
}

func (e *WriteBackError) Error() string {
	return fmt.Sprintf("记录 %s 写回失败: %v", e.RecordID, e.Err)
}

func (e *WriteBackError) Unwrap() error {
	return e.Err
}

func IsWriteBackError(err error) bool {
	var we *WriteBackError
	return errors.As(err, &we)
}
