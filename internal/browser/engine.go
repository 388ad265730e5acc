// Package browser owns the shared headless browser and turns panorama embed
// URLs into JPEG screenshots.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Engine is one running browser instance shared by every render.
type Engine interface {
	// NewSurface opens an isolated tab sized width×height at device scale 1.
	NewSurface(ctx context.Context, width, height int) (Surface, error)
	Alive() bool
	Close() error
}

// Surface is a single tab. Close must be safe to call on every path.
type Surface interface {
	// Navigate loads url and waits for network idle, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Swipe presses at from, drags to to in steps, and releases.
	Swipe(ctx context.Context, from, to Point, steps int) error
	// WaitCanvas waits for a canvas with non-zero width.
	WaitCanvas(ctx context.Context, timeout time.Duration) error
	// CanvasReady samples canvas pixels (or the rAF flag when pixels are unreadable).
	CanvasReady(ctx context.Context) (bool, error)
	// Capture returns a PNG of clip.
	Capture(ctx context.Context, clip Clip) ([]byte, error)
	Close() error
}

// Launcher starts a new Engine.
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Engine, error)

func (f LauncherFunc) Launch(ctx context.Context) (Engine, error) { return f(ctx) }

type Point struct {
	X, Y float64
}

type Clip struct {
	X, Y          float64
	Width, Height float64
}

// RenderError reports a navigation or capture failure. Replaying the round start is safe.
type RenderError struct {
	URL string
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ResourceLaunchError reports that the browser could not be started.
type ResourceLaunchError struct {
	Err error
}

func (e *ResourceLaunchError) Error() string {
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *ResourceLaunchError) Unwrap() error { return e.Err }

// ErrEngineClosed is returned by Acquire after Close.
var ErrEngineClosed = errors.New("browser manager closed")
