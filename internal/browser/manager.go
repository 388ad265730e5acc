package browser

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"Streak_discord_bot/internal/metrics"
)

// DefaultMaxAge ブラウザを再起動するまでの寿命
const DefaultMaxAge = 10 * time.Minute

// Manager 共有ブラウザの遅延起動と定期リサイクル
type Manager struct {
	launcher Launcher
	maxAge   time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	engine    Engine
	startedAt time.Time
	closed    bool
}

// NewManager launcher を使う Manager を作成（maxAge<=0 なら DefaultMaxAge）
func NewManager(launcher Launcher, maxAge time.Duration) *Manager {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Manager{
		launcher: launcher,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Acquire 現在のブラウザを返す。無い・寿命切れなら起動し直す
// 起動中に呼ばれた場合は同じ起動の完了を待つ（二重起動しない）
func (m *Manager) Acquire(ctx context.Context) (Engine, error) {
	if e, ok := m.current(); ok {
		return e, nil
	}

	ch := m.group.DoChan("engine", func() (interface{}, error) {
		return m.relaunch(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// current 有効なブラウザがあれば返す
func (m *Manager) current() (Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil || m.expiredLocked() {
		return nil, false
	}
	return m.engine, true
}

func (m *Manager) expiredLocked() bool {
	return m.now().Sub(m.startedAt) > m.maxAge || !m.engine.Alive()
}

func (m *Manager) relaunch(ctx context.Context) (Engine, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrEngineClosed
	}
	// 先行した起動が完了していればそれを使う
	if m.engine != nil && !m.expiredLocked() {
		e := m.engine
		m.mu.Unlock()
		return e, nil
	}
	old := m.engine
	m.engine = nil
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing old browser")
		} else {
			log.Info().Msg("Old browser closed for recycling")
		}
	}

	engine, err := m.launcher.Launch(ctx)
	if err != nil {
		metrics.BrowserLaunchesTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("Failed to launch browser")
		return nil, &ResourceLaunchError{Err: err}
	}
	metrics.BrowserLaunchesTotal.WithLabelValues("ok").Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		_ = engine.Close()
		return nil, ErrEngineClosed
	}
	m.engine = engine
	m.startedAt = m.now()
	log.Info().Dur("max_age", m.maxAge).Msg("Browser launched")
	return engine, nil
}

// WarmUp 起動直後にブラウザを立ち上げておく
// 失敗してもログだけ残し、次の Acquire で再試行させる
func (m *Manager) WarmUp(ctx context.Context) {
	start := time.Now()
	if _, err := m.Acquire(ctx); err != nil {
		log.Warn().Err(err).Msg("Browser warm-up failed; will retry on first render")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("Browser warmed up")
}

// Alive 現在ブラウザが起動済みで生きているか（ヘルスチェック用）
func (m *Manager) Alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine != nil && m.engine.Alive()
}

// Close ブラウザを終了し、以後の Acquire を拒否する
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.engine == nil {
		return nil
	}
	err := m.engine.Close()
	m.engine = nil
	return err
}
