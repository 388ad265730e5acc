package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// 描画前に注入するスクリプト: requestAnimationFrame が呼ばれたら準備完了とみなす
const frameHookScript = `
window._resourcesLoaded = false;
window._canvasReady = false;
(() => {
  const original = window.requestAnimationFrame.bind(window);
  window.requestAnimationFrame = function (callback) {
    window._canvasReady = true;
    return original(callback);
  };
})();
`

const canvasPresentScript = `(() => {
  const canvas = document.querySelector('canvas');
  return !!canvas && canvas.offsetWidth > 0;
})()`

// ピクセルを一定間隔でサンプリングし、暗くない点が 3 つを超えたら準備完了
// WebGL キャンバス等で 2D コンテキストが取れない場合は rAF フラグで代用
const canvasReadyScript = `(() => {
  const canvas = document.querySelector('canvas');
  if (!canvas) return false;
  try {
    const ctx = canvas.getContext('2d');
    const data = ctx.getImageData(0, 0, canvas.width, canvas.height).data;
    let lit = 0;
    for (let i = 0; i < data.length; i += 30000) {
      if (data[i] > 20 || data[i + 1] > 20 || data[i + 2] > 20) lit++;
      if (lit > 3) return true;
    }
    return false;
  } catch (e) {
    return window._canvasReady === true;
  }
})()`

// ChromeOptions chromedp で起動するブラウザの設定
type ChromeOptions struct {
	// RemoteURL が設定されていれば起動せずに既存の DevTools に接続する
	RemoteURL string
	Width     int
	Height    int
}

// ChromeLauncher chromedp 版 Launcher
type ChromeLauncher struct {
	opts ChromeOptions
}

func NewChromeLauncher(opts ChromeOptions) *ChromeLauncher {
	if opts.Width <= 0 {
		opts.Width = ViewportWidth
	}
	if opts.Height <= 0 {
		opts.Height = ViewportHeight
	}
	return &ChromeLauncher{opts: opts}
}

// Launch ブラウザを起動し、基準タブを 1280×720 で開いておく
func (l *ChromeLauncher) Launch(ctx context.Context) (Engine, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if l.opts.RemoteURL != "" {
		product, err := ProbeDevTools(ctx, l.opts.RemoteURL, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", l.opts.RemoteURL, err)
		}
		log.Info().Str("product", product).Str("url", l.opts.RemoteURL).Msg("Attaching to remote browser")
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), l.opts.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Headless,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-accelerated-2d-canvas", true),
			chromedp.NoFirstRun,
			chromedp.Flag("no-zygote", true),
			chromedp.DisableGPU,
			chromedp.Flag("disable-extensions", true),
			chromedp.WindowSize(l.opts.Width, l.opts.Height),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// 最初の Run でブラウザとタブが確保される。タイムアウト付き ctx は使わない
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(l.opts.Width), int64(l.opts.Height), chromedp.EmulateScale(1)),
	); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &chromeEngine{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

type chromeEngine struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func (e *chromeEngine) Alive() bool {
	return e.browserCtx.Err() == nil
}

func (e *chromeEngine) Close() error {
	err := chromedp.Cancel(e.browserCtx)
	e.browserCancel()
	e.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (e *chromeEngine) NewSurface(ctx context.Context, width, height int) (Surface, error) {
	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	s := &chromeSurface{ctx: tabCtx, cancel: tabCancel}

	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(width), int64(height), chromedp.EmulateScale(1)),
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(frameHookScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

type chromeSurface struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run タブの ctx から派生させて実行し、呼び出し側 ctx のキャンセルにも追従する
func (s *chromeSurface) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSurface) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	tracker := newIdleTracker()
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			tracker.observe(string(e.FrameID), string(e.LoaderID))
		}
	})

	return s.run(ctx, timeout,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameID, loaderID, errorText, err := page.Navigate(url).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("navigate %s: %s", url, errorText)
			}
			// メインフレームのこのドキュメントの networkIdle だけを待つ
			return tracker.wait(ctx, string(frameID), string(loaderID))
		}),
	)
}

func (s *chromeSurface) Swipe(ctx context.Context, from, to Point, steps int) error {
	if steps < 1 {
		steps = 1
	}
	actions := []chromedp.Action{
		chromedp.MouseEvent(input.MouseMoved, from.X, from.Y),
		chromedp.MouseEvent(input.MousePressed, from.X, from.Y, chromedp.ButtonLeft, chromedp.ClickCount(1)),
	}
	for i := 1; i <= steps; i++ {
		x := from.X + (to.X-from.X)*float64(i)/float64(steps)
		y := from.Y + (to.Y-from.Y)*float64(i)/float64(steps)
		actions = append(actions, chromedp.MouseEvent(input.MouseMoved, x, y, chromedp.ButtonLeft))
	}
	actions = append(actions,
		chromedp.MouseEvent(input.MouseReleased, to.X, to.Y, chromedp.ButtonLeft, chromedp.ClickCount(1)),
	)
	return s.run(ctx, 0, actions...)
}

func (s *chromeSurface) WaitCanvas(ctx context.Context, timeout time.Duration) error {
	var present bool
	return s.run(ctx, 0, chromedp.Poll(canvasPresentScript, &present,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
}

func (s *chromeSurface) CanvasReady(ctx context.Context) (bool, error) {
	var ready bool
	err := s.run(ctx, 0, chromedp.Evaluate(canvasReadyScript, &ready))
	return ready, err
}

func (s *chromeSurface) Capture(ctx context.Context, clip Clip) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{X: clip.X, Y: clip.Y, Width: clip.Width, Height: clip.Height, Scale: 1}).
			Do(ctx)
		return err
	}))
	return buf, err
}

func (s *chromeSurface) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
