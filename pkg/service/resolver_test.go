package service

import (
	"context"
	"fmt"
	"testing"

	"detect-sync/pkg/host"

	"github.com/stretchr/testify/require"
)

type fakeChildStore struct {
	children  []host.ItemRef
	selectErr error
	insertErr error

	selectCalls int
	insertCalls int
	nextID      string
}

func (f *fakeChildStore) SelectChildren(_ context.Context, _ string) ([]host.ItemRef, error) {
	f.selectCalls++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.children, nil
}

func (f *fakeChildStore) InsertChild(_ context.Context, _ string) (string, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.children = append(f.children, host.ItemRef{ID: f.nextID})
	return f.nextID, nil
}

func TestResolveReturnsOldestExisting(t *testing.T) {
	t.Parallel()

	store := &fakeChildStore{children: []host.ItemRef{{ID: "c1"}, {ID: "c2"}}}
	ref, err := NewResolver(store).Resolve(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "c1", ref.ID)
	require.Zero(t, store.insertCalls)
}

func TestResolveCreatesWhenMissing(t *testing.T) {
	t.Parallel()

	store := &fakeChildStore{nextID: "c9"}
	ref, err := NewResolver(store).Resolve(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "c9", ref.ID)
	require.Equal(t, 1, store.insertCalls)
}

func TestResolveSequentialIdempotence(t *testing.T) {
	t.Parallel()

	store := &fakeChildStore{nextID: "c9"}
	r := NewResolver(store)

	first, err := r.Resolve(context.Background(), "p1")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "p1")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, store.insertCalls)
	require.Len(t, store.children, 1)
}

func TestResolveQueryError(t *testing.T) {
	t.Parallel()

	store := &fakeChildStore{selectErr: fmt.Errorf("boom")}
	_, err := NewResolver(store).Resolve(context.Background(), "p1")
	require.Error(t, err)
	require.True(t, IsResolverQueryError(err))
	require.Zero(t, store.insertCalls)
}

func TestResolveInsertError(t *testing.T) {
	t.Parallel()

	store := &fakeChildStore{insertErr: fmt.Errorf("boom")}
	_, err := NewResolver(store).Resolve(context.Background(), "p1")
	require.Error(t, err)
	require.False(t, IsResolverQueryError(err))
}
