// Package headless renders pages with a real browser via chromedp, for
// sites whose content only exists after JavaScript runs.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Config controls the renderer.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxParallel int
}

// Renderer renders pages using headless Chrome. A shared browser process is
// reused across renders; each render gets its own tab.
type Renderer struct {
	cfg         Config
	expand      ExpandStrategy
	logger      *zap.Logger
	sem         chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// New creates a Renderer. expand may be nil, in which case no post-load
// expansion runs.
func New(cfg Config, expand ExpandStrategy, logger *zap.Logger) (*Renderer, error) {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if expand == nil {
		expand = NoopExpand{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		expand:      expand,
		logger:      logger,
		sem:         make(chan struct{}, cfg.MaxParallel),
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close tears down the browser allocator.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Render navigates to the URL, runs the expansion strategy, and returns the
// resulting DOM markup.
func (r *Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("render slot: %w", ctx.Err())
	}
	defer func() { <-r.sem }()

	tabCtx, cancelTab := chromedp.NewContext(r.allocator)
	defer cancelTab()
	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer cancelTask()

	actions := []chromedp.Action{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
	}
	actions = append(actions, r.expand.Actions()...)

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	start := time.Now()
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	r.logger.Debug("Rendered page",
		zap.String("url", rawURL),
		zap.Duration("elapsed", time.Since(start)),
	)
	return html, nil
}
