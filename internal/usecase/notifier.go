package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/cache"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// ChangeEventPublisher は変更レコードの外部配信インターフェース（Kafka など）。
type ChangeEventPublisher interface {
	Publish(ctx context.Context, record *model.ChangeRecord) error
}

// ChangeEvent は購読者へブロードキャストされる変更メッセージ。
// Sequence が重複排除キーで、同一識別子内の順序はコミット順に一致する。
type ChangeEvent struct {
	Action    string          `json:"action"`
	Sequence  int64           `json:"sequence"`
	Section   string          `json:"section"`
	Key       string          `json:"key"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	Version   int             `json:"version"`
	Source    string          `json:"source"`
	UpdatedBy string          `json:"updated_by"`
	Timestamp time.Time       `json:"timestamp"`
}

// Notifier はコミット済み変更集合を購読者向けメッセージへ展開する。
// 配信はベストエフォートの at-least-once で、失敗しても書き込みは成功のまま。
type Notifier struct {
	cache     cache.ConfigCache
	publisher ChangeEventPublisher
	retryCfg  *retry.Config
}

// NewNotifier は新しい Notifier を作成する。publisher は nil でもよい。
func NewNotifier(c cache.ConfigCache, publisher ChangeEventPublisher, retryCfg *retry.Config) *Notifier {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &Notifier{cache: c, publisher: publisher, retryCfg: retryCfg}
}

// Publish は変更レコードをコミット順にブロードキャストする。
// 配信数を返す。エラーはログに残すだけで呼び出し元へは返さない。
func (n *Notifier) Publish(ctx context.Context, records []*model.ChangeRecord) int {
	published := 0
	for _, record := range records {
		event := ChangeEvent{
			Action:    actionFor(record),
			Sequence:  record.Sequence,
			Section:   record.Section,
			Key:       record.Key,
			NewValue:  record.NewValue,
			Version:   record.NewVersion,
			Source:    record.Source,
			UpdatedBy: record.ChangedBy,
			Timestamp: record.ChangedAt,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to encode change event", "section", record.Section, "key", record.Key, "error", err)
			continue
		}

		_, err = retry.Do(ctx, n.retryCfg, nil, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, n.cache.Broadcast(ctx, payload)
		})
		if err != nil {
			slog.Error("failed to broadcast change event", "section", record.Section, "key", record.Key, "error", err)
		} else {
			published++
		}

		// Kafka への配信は任意（エラーは無視して書き込みは成功とする）
		if n.publisher != nil {
			if err := n.publisher.Publish(ctx, record); err != nil {
				slog.Warn("failed to publish change record to kafka", "section", record.Section, "key", record.Key, "error", err)
			}
		}
	}
	return published
}

func actionFor(record *model.ChangeRecord) string {
	if record.ChangeType == model.ChangeTypeDeleted {
		return "delete"
	}
	return "set"
}
