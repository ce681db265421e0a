package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
)

func TestSyncEngine_DeleteConfig_Success(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	now := time.Now().UTC()
	store.On("ApplyBulk", mock.Anything, mock.MatchedBy(func(req model.BulkUpdateRequest) bool {
		return len(req.Operations) == 1 && req.Operations[0].Delete
	})).Return([]model.CommittedChange{{
		Section:    "app",
		Key:        "log_level",
		OldValue:   json.RawMessage(`"info"`),
		OldVersion: 3,
		UpdatedAt:  now,
	}}, nil)
	mockCache.On("Invalidate", mock.Anything, "app", "log_level").Return(nil)
	mockCache.On("Broadcast", mock.Anything, mock.Anything).Return(nil)

	var appended []*model.ChangeRecord
	clRepo.On("Append", mock.Anything, mock.AnythingOfType("[]*model.ChangeRecord")).
		Run(func(args mock.Arguments) {
			appended = args.Get(1).([]*model.ChangeRecord)
		}).Return(nil)

	err := engine.DeleteConfig(context.Background(), "app", "log_level", "operator@example.com")

	require.NoError(t, err)
	require.Len(t, appended, 1)
	assert.Equal(t, model.ChangeTypeDeleted, appended[0].ChangeType)
	assert.Nil(t, appended[0].NewValue)
	mockCache.AssertExpectations(t)
}

func TestSyncEngine_DeleteConfig_NotFound(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	store.On("ApplyBulk", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	err := engine.DeleteConfig(context.Background(), "app", "missing", "tester")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	// 存在しない識別子の削除は副作用を残さない
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	clRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSyncEngine_DeleteSection_DeletesAllKeysInOneTransaction(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	now := time.Now().UTC()
	store.On("ListBySection", mock.Anything, "limits").Return([]*model.ConfigEntry{
		{Section: "limits", Key: "max_request_bytes", ValueJSON: json.RawMessage(`1048576`), Version: 1},
		{Section: "limits", Key: "rate_per_minute", ValueJSON: json.RawMessage(`600`), Version: 2},
	}, nil)
	store.On("ApplyBulk", mock.Anything, mock.MatchedBy(func(req model.BulkUpdateRequest) bool {
		if len(req.Operations) != 2 {
			return false
		}
		for _, op := range req.Operations {
			if !op.Delete {
				return false
			}
		}
		return true
	})).Return([]model.CommittedChange{
		{Section: "limits", Key: "max_request_bytes", OldValue: json.RawMessage(`1048576`), OldVersion: 1, UpdatedAt: now},
		{Section: "limits", Key: "rate_per_minute", OldValue: json.RawMessage(`600`), OldVersion: 2, UpdatedAt: now},
	}, nil)
	mockCache.On("Invalidate", mock.Anything, "limits", mock.Anything).Return(nil).Times(2)
	mockCache.On("InvalidateSection", mock.Anything, "limits").Return(nil)
	mockCache.On("Broadcast", mock.Anything, mock.Anything).Return(nil).Times(2)
	clRepo.On("Append", mock.Anything, mock.AnythingOfType("[]*model.ChangeRecord")).Return(nil)

	err := engine.DeleteSection(context.Background(), "limits", "operator@example.com")

	require.NoError(t, err)
	store.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestSyncEngine_DeleteSection_NotFound(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	store.On("ListBySection", mock.Anything, "missing").Return([]*model.ConfigEntry{}, nil)

	err := engine.DeleteSection(context.Background(), "missing", "tester")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	store.AssertNotCalled(t, "ApplyBulk", mock.Anything, mock.Anything)
}
