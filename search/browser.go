package search

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserFetcher renders the results page in headless Chrome. Engines that
// block plain HTTP clients usually serve a real browser.
type BrowserFetcher struct {
	logger  *zap.Logger
	timeout time.Duration
	options []chromedp.ExecAllocatorOption
}

func NewBrowserFetcher(logger *zap.Logger, userAgent, proxyURL string, timeout time.Duration) *BrowserFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	options := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(userAgent),
		chromedp.Flag("accept-language", "en-US,en;q=0.9"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-extensions", true),
	)
	if proxyURL != "" {
		options = append(options, chromedp.ProxyServer(proxyURL))
	}
	return &BrowserFetcher{
		logger:  logger,
		timeout: timeout,
		options: options,
	}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.options...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, b.timeout)
	defer timeoutCancel()

	var domHTML string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &domHTML),
	)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	b.logger.Debug("browser_page_rendered",
		zap.String("url", pageURL),
		zap.Int("dom_length", len(domHTML)))

	return []byte(domHTML), nil
}
