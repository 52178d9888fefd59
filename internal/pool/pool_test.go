package pool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockHandle(region string, closeErr error) *store.HandleMock {
	return &store.HandleMock{
		RegionFunc: func() string { return region },
		CloseFunc:  func() error { return closeErr },
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	regions := []string{"West US 2", "North Europe", "Southeast Asia"}

	var dialed []string
	p, err := New(ctx, regions, func(_ context.Context, region string) (store.Handle, error) {
		dialed = append(dialed, region)
		return mockHandle(region, nil), nil
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, regions, dialed)
	assert.Equal(t, regions, p.Regions())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "West US 2", p.Primary().Region())

	handles := p.Handles()
	require.Len(t, handles, 3)
	for i, h := range handles {
		assert.Equal(t, regions[i], h.Region())
	}

	require.NoError(t, p.Close())
	for _, h := range handles {
		assert.Len(t, h.(*store.HandleMock).CloseCalls(), 1)
	}
}

func TestNew_NoRegions(t *testing.T) {
	called := false
	_, err := New(context.Background(), nil, func(context.Context, string) (store.Handle, error) {
		called = true
		return nil, nil
	}, testLogger())

	assert.ErrorIs(t, err, ErrNoRegions)
	assert.False(t, called)
}

func TestNew_DialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	built := make([]*store.HandleMock, 0)
	attempts := 0

	_, err := New(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, region string) (store.Handle, error) {
		attempts++
		if region == "b" {
			return nil, dialErr
		}
		h := mockHandle(region, nil)
		built = append(built, h)
		return h, nil
	}, testLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, dialErr)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Equal(t, 2, attempts, "no retries and no dial after failure")

	require.Len(t, built, 1)
	assert.Len(t, built[0].CloseCalls(), 1)
}

func TestClose_JoinsErrors(t *testing.T) {
	closeErr := errors.New("boom")
	p, err := New(context.Background(), []string{"a", "b"}, func(_ context.Context, region string) (store.Handle, error) {
		if region == "a" {
			return mockHandle(region, closeErr), nil
		}
		return mockHandle(region, nil), nil
	}, testLogger())
	require.NoError(t, err)

	err = p.Close()
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), `"a"`)
}
