package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/cache"
)

// MockConfigRepository は ConfigRepository のモック。
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) GetByKey(ctx context.Context, section, key string) (*model.ConfigEntry, error) {
	args := m.Called(ctx, section, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigEntry), args.Error(1)
}

func (m *MockConfigRepository) ListBySection(ctx context.Context, section string) ([]*model.ConfigEntry, error) {
	args := m.Called(ctx, section)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ConfigEntry), args.Error(1)
}

func (m *MockConfigRepository) ListAll(ctx context.Context) ([]*model.ConfigEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ConfigEntry), args.Error(1)
}

func (m *MockConfigRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockConfigRepository) ApplyBulk(ctx context.Context, req model.BulkUpdateRequest) ([]model.CommittedChange, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommittedChange), args.Error(1)
}

// MockChangeLogRepository は ChangeLogRepository のモック。
type MockChangeLogRepository struct {
	mock.Mock
}

func (m *MockChangeLogRepository) Append(ctx context.Context, records []*model.ChangeRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockChangeLogRepository) MaxSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChangeLogRepository) Query(ctx context.Context, params repository.ChangeLogQueryParams) ([]*model.ChangeRecord, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.ChangeRecord), args.Int(1), args.Error(2)
}

// MockConfigCache は ConfigCache のモック。
type MockConfigCache struct {
	mock.Mock
}

func (m *MockConfigCache) Get(ctx context.Context, section, key string) (*cache.Entry, error) {
	args := m.Called(ctx, section, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.Entry), args.Error(1)
}

func (m *MockConfigCache) Put(ctx context.Context, entry cache.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockConfigCache) Invalidate(ctx context.Context, section, key string) error {
	args := m.Called(ctx, section, key)
	return args.Error(0)
}

func (m *MockConfigCache) InvalidateSection(ctx context.Context, section string) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockConfigCache) Broadcast(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockConfigCache) Subscribe(ctx context.Context) (<-chan []byte, func()) {
	args := m.Called(ctx)
	return args.Get(0).(chan []byte), args.Get(1).(func())
}

func (m *MockConfigCache) Healthy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockConfigCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockChangeEventPublisher は ChangeEventPublisher のモック。
type MockChangeEventPublisher struct {
	mock.Mock
}

func (m *MockChangeEventPublisher) Publish(ctx context.Context, record *model.ChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
