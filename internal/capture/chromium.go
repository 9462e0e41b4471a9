// Package capture renders the calendar page to a PNG with headless Chromium.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"pogocal/internal/config"
	appLog "pogocal/internal/log"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 960
	DefaultTimeout = 30 * time.Second

	// ReadySelector matches the calendar root once it has rendered.
	ReadySelector = `[data-ready="true"]`
)

// Options defines parameters for a screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar".
	URL string

	// OutputPath is where the PNG is written. Parent directories are created.
	OutputPath string

	// Width and Height are the viewport in pixels.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration
}

// OptionsFrom maps the capture section of the config.
func OptionsFrom(c config.CaptureConfig) Options {
	return Options{
		URL:        c.URL,
		OutputPath: c.OutputPath,
		Width:      c.Width,
		Height:     c.Height,
	}
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// CalendarPNG navigates headless Chromium to opts.URL, waits for the page to
// expose data-ready="true" and writes a full-page screenshot to
// opts.OutputPath.
func CalendarPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	start := time.Now()
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Let sprite images finish painting.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := write(opts.OutputPath, png); err != nil {
		return err
	}
	appLog.Info("calendar captured", "path", opts.OutputPath, "bytes", len(png), "took", time.Since(start).String())
	return nil
}

func write(path string, png []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("capture: create output dir: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
