package browser

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/metrics"
)

const (
	ViewportWidth  = 1280
	ViewportHeight = 720
	OutputHeight   = 715
	JPEGQuality    = 65
)

// RenderOptions 各待機時間の上限
type RenderOptions struct {
	NavigationTimeout time.Duration
	CanvasTimeout     time.Duration
	ReadyTimeout      time.Duration
	ReadyInterval     time.Duration
	SettleDelay       time.Duration
}

// DefaultRenderOptions ナビゲーション 50s、キャンバス 5s、描画待ち 3s（1.5s 間隔）、安定待ち 500ms
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		NavigationTimeout: 50 * time.Second,
		CanvasTimeout:     5 * time.Second,
		ReadyTimeout:      3 * time.Second,
		ReadyInterval:     1500 * time.Millisecond,
		SettleDelay:       500 * time.Millisecond,
	}
}

// Renderer パノラマ埋め込みページのスクリーンショットを撮る
type Renderer struct {
	manager *Manager
	opts    RenderOptions
}

func NewRenderer(manager *Manager, opts RenderOptions) *Renderer {
	return &Renderer{manager: manager, opts: opts}
}

// Render url を開き、描画完了を待ってから 1280×715 の JPEG を返す
func (r *Renderer) Render(ctx context.Context, url string) ([]byte, error) {
	started := time.Now()
	defer func() {
		metrics.RenderDurationSeconds.Observe(time.Since(started).Seconds())
	}()

	engine, err := r.manager.Acquire(ctx)
	if err != nil {
		return nil, &RenderError{URL: url, Op: "acquire", Err: err}
	}

	surface, err := engine.NewSurface(ctx, ViewportWidth, ViewportHeight)
	if err != nil {
		return nil, &RenderError{URL: url, Op: "open surface", Err: err}
	}
	defer func() {
		if err := surface.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing page")
		}
	}()

	log.Debug().Str("url", url).Msg("Navigating")
	if err := surface.Navigate(ctx, url, r.opts.NavigationTimeout); err != nil {
		return nil, &RenderError{URL: url, Op: "navigate", Err: err}
	}

	// ストリートビューはポインタ操作が入るまでタイルを読み込まないことがある
	center := Point{X: ViewportWidth / 2, Y: ViewportHeight / 2}
	if err := surface.Swipe(ctx, center, Point{X: center.X + 10, Y: center.Y}, 2); err != nil {
		log.Debug().Err(err).Msg("Pointer swipe failed")
	}

	if err := surface.WaitCanvas(ctx, r.opts.CanvasTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, &RenderError{URL: url, Op: "wait canvas", Err: ctx.Err()}
		}
		log.Info().Str("url", url).Msg("No canvas found, attempting to capture anyway")
	}

	ready, err := r.waitReady(ctx, surface)
	if err != nil {
		return nil, &RenderError{URL: url, Op: "wait ready", Err: err}
	}
	if ready {
		metrics.RenderReadyTotal.WithLabelValues("pixels").Inc()
	} else {
		metrics.RenderReadyTotal.WithLabelValues("timeout").Inc()
		log.Info().Str("url", url).Msg("Canvas never looked ready, capturing anyway")
	}

	if err := sleep(ctx, r.opts.SettleDelay); err != nil {
		return nil, &RenderError{URL: url, Op: "settle", Err: err}
	}

	// y=-3 で上端の UI のにじみを切り落とす
	raw, err := surface.Capture(ctx, Clip{X: 0, Y: -3, Width: ViewportWidth, Height: ViewportHeight})
	if err != nil {
		return nil, &RenderError{URL: url, Op: "capture", Err: err}
	}

	out, err := Postprocess(raw, ViewportWidth, OutputHeight, JPEGQuality)
	if err != nil {
		return nil, &RenderError{URL: url, Op: "encode", Err: err}
	}
	return out, nil
}

// waitReady ReadyTimeout まで ReadyInterval 間隔でピクセルを確認する
// 上限に達しても失敗にはしない
func (r *Renderer) waitReady(ctx context.Context, surface Surface) (bool, error) {
	deadline := time.Now().Add(r.opts.ReadyTimeout)
	for {
		ready, err := surface.CanvasReady(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			log.Debug().Err(err).Msg("Readiness probe failed")
		}
		if ready {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		if err := sleep(ctx, r.opts.ReadyInterval); err != nil {
			return false, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRenderError err が描画失敗かどうか
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}
