package browser

import (
	"context"
	"sync"
)

// documentKey ナビゲーション1回分を表すフレームとローダーの組
type documentKey struct {
	frame  string
	loader string
}

// idleTracker networkIdle を受けたドキュメントを記録し、目的のドキュメントの到着を待つ
// 有効化時に再送される about:blank や iframe の networkIdle は別のキーなので無視される
type idleTracker struct {
	mu     sync.Mutex
	seen   map[documentKey]bool
	notify chan struct{}
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		seen:   make(map[documentKey]bool),
		notify: make(chan struct{}, 1),
	}
}

func (t *idleTracker) observe(frame, loader string) {
	t.mu.Lock()
	t.seen[documentKey{frame, loader}] = true
	t.mu.Unlock()

	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *idleTracker) idle(frame, loader string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[documentKey{frame, loader}]
}

// wait frame/loader の networkIdle まで待つ。待つ前に届いていれば即座に返る
func (t *idleTracker) wait(ctx context.Context, frame, loader string) error {
	for {
		if t.idle(frame, loader) {
			return nil
		}
		select {
		case <-t.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
