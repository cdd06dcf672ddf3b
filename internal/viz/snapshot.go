package viz

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultSnapshotTimeout bounds a single headless-browser capture.
const DefaultSnapshotTimeout = 30 * time.Second

// chromeBinaries are probed in order when checking snapshot capability.
var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// SnapshotAvailable reports whether a Chrome binary is on PATH. The
// orchestrator checks this once and skips PNG capture when no browser is
// installed, rather than failing the visualization stage.
func (r *Renderer) SnapshotAvailable() bool {
	for _, bin := range chromeBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			return true
		}
	}
	return false
}

// Snapshot loads a rendered HTML document in a headless browser and writes
// a PNG capture. Requires Chrome/Chromium to be installed on the system.
func (r *Renderer) Snapshot(ctx context.Context, htmlPath, pngPath string) error {
	url := htmlPath
	if !strings.Contains(url, "://") {
		abs, err := filepath.Abs(htmlPath)
		if err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		url = "file://" + abs
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, DefaultSnapshotTimeout)
	defer cancel()

	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give the client-side renderers time to draw.
		chromedp.Sleep(2*time.Second),
		chromedp.FullScreenshot(&png, 90),
	)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	if err := os.WriteFile(pngPath, png, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
