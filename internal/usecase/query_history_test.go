package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
)

func TestSyncEngine_QueryHistory_DefaultPaging(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	clRepo.On("Query", mock.Anything, repository.ChangeLogQueryParams{Limit: 10}).
		Return([]*model.ChangeRecord{
			{Sequence: 3, Section: "app", Key: "a", ChangeType: model.ChangeTypeUpdated},
			{Sequence: 2, Section: "app", Key: "a", ChangeType: model.ChangeTypeUpdated},
			{Sequence: 1, Section: "app", Key: "a", ChangeType: model.ChangeTypeCreated},
		}, 3, nil)

	output, err := engine.QueryHistory(context.Background(), QueryHistoryInput{})

	require.NoError(t, err)
	assert.Equal(t, 3, output.TotalCount)
	assert.Equal(t, 10, output.Limit)
	assert.Equal(t, 0, output.Offset)
	// 新しい変更が先頭
	assert.Equal(t, int64(3), output.Records[0].Sequence)
}

func TestSyncEngine_QueryHistory_LimitCapped(t *testing.T) {
	store := new(MockConfigRepository)
	clRepo := new(MockChangeLogRepository)
	mockCache := new(MockConfigCache)
	engine := newTestEngine(store, clRepo, mockCache)
	markReady(engine)

	clRepo.On("Query", mock.Anything, repository.ChangeLogQueryParams{
		Section: "app", Key: "log_level", Limit: 100, Offset: 20,
	}).Return([]*model.ChangeRecord{}, 0, nil)

	output, err := engine.QueryHistory(context.Background(), QueryHistoryInput{
		Section: "app", Key: "log_level", Limit: 1000, Offset: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, 100, output.Limit)
	assert.NotNil(t, output.Records)
	assert.Empty(t, output.Records)
	clRepo.AssertExpectations(t)
}
