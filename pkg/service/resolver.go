package service

import (
	"context"

	"detect-sync/pkg/host"
	"detect-sync/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ChildStore 解析子记录所需的主机平台操作
type ChildStore interface {
	SelectChildren(ctx context.Context, parentID string) ([]host.ItemRef, error)
	InsertChild(ctx context.Context, parentID string) (string, error)
}

// Resolver 定位或创建与父记录关联的子记录
// 查询-创建不是事务性的：同一父记录的两次并发运行可能各建一个子记录，
// 因此创建后会重查并取最旧的一条，让重复创建最终收敛到同一引用
type Resolver struct {
	store ChildStore
}

func NewResolver(store ChildStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve 返回父记录的子记录引用，不存在时创建
// 顺序重复调用是幂等的：返回同一引用，至多创建一个子记录
func (r *Resolver) Resolve(ctx context.Context, parentID string) (model.ChildRecordRef, error) {
	items, err := r.store.SelectChildren(ctx, parentID)
	if err != nil {
		return model.ChildRecordRef{}, &ResolverQueryError{ParentID: parentID, Err: err}
	}
	if len(items) > 0 {
		// 升序排序保证第一条是最旧的
		return model.ChildRecordRef{ID: items[0].ID}, nil
	}

	newID, err := r.store.InsertChild(ctx, parentID)
	if err != nil {
		return model.ChildRecordRef{}, errors.Wrapf(err, "父记录 %s 的子记录创建失败", parentID)
	}
	zap.S().Infof("父记录 %s 新建子记录 %s", parentID, newID)

	// 重查取最旧的一条，并发重复创建时收敛到同一个子记录
	items, err = r.store.SelectChildren(ctx, parentID)
	if err != nil || len(items) == 0 {
		if err != nil {
			zap.S().Warnf("子记录创建后的重查失败, 使用新建记录 %s: %v", newID, err)
		}
		return model.ChildRecordRef{ID: newID}, nil
	}
	return model.ChildRecordRef{ID: items[0].ID}, nil
}
