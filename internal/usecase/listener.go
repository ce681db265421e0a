package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/cache"
)

// ChangeCallback は変更イベント受信時に呼ばれるフック。
type ChangeCallback func(event ChangeEvent)

// ChangeListener はブロードキャストチャネルを購読し、変更イベントを
// コールバックへ引き渡す。配信は at-least-once なので、識別子毎に観測済み
// シーケンスを記録して重複と古いイベントを捨てる。
type ChangeListener struct {
	cache    cache.ConfigCache
	callback ChangeCallback

	mu      sync.Mutex
	lastSeq map[string]int64
}

// NewChangeListener は新しい ChangeListener を作成する。callback は nil でもよい。
func NewChangeListener(c cache.ConfigCache, callback ChangeCallback) *ChangeListener {
	return &ChangeListener{
		cache:    c,
		callback: callback,
		lastSeq:  make(map[string]int64),
	}
}

// Run はコンテキストが終了するまでイベントを処理し続ける。
// ブロッキングするため、通常は goroutine で起動する。
func (l *ChangeListener) Run(ctx context.Context) {
	events, unsubscribe := l.cache.Subscribe(ctx)
	defer unsubscribe()

	slog.Info("listening for config changes")
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-events:
			if !ok {
				return
			}
			l.handle(payload)
		}
	}
}

func (l *ChangeListener) handle(payload []byte) {
	var event ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		slog.Error("failed to decode change event", "error", err)
		return
	}

	identity := event.Section + ":" + event.Key
	l.mu.Lock()
	if event.Sequence <= l.lastSeq[identity] {
		// 再配信または追い越されたイベント
		l.mu.Unlock()
		return
	}
	l.lastSeq[identity] = event.Sequence
	l.mu.Unlock()

	slog.Info("config change received",
		"action", event.Action, "section", event.Section, "key", event.Key, "sequence", event.Sequence)

	if l.callback != nil {
		l.callback(event)
	}
}
