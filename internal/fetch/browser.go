package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum body text length for a static fetch to
// count as rendered. Shorter pages are likely script shells and should go
// through the browser fallback.
const MinContentLength = 500

// ShouldUseBrowser reports whether the statically fetched page is too thin
// to extract from.
func ShouldUseBrowser(visibleTextLength int) bool {
	return visibleTextLength < MinContentLength
}

// RenderURL loads a page in a one-shot headless browser and returns the
// rendered HTML. Used only by the non-interactive extract path; the tracking
// flow holds a long-lived session instead.
func RenderURL(ctx context.Context, log *zap.Logger, url string, timeout time.Duration) (string, error) {
	if log == nil {
		log = zap.NewNop()
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

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Let scripts render content before snapshotting.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss common cookie banners; ignore when absent.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.Debug("page rendered", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}
