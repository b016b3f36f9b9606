// Package browser hands out one isolated headless Chrome per scrape.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"league-tracker/internal/config"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Page is a single tab in a browser that nobody else uses. Close releases
// the whole browser process.
type Page interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, selector string) error
	Evaluate(ctx context.Context, expression string, out any) error
	OuterHTML(ctx context.Context) (string, error)
	Close() error
}

type Launcher interface {
	Launch(ctx context.Context) (Page, error)
}

type ChromeLauncher struct {
	chromePath string
	logger     zerolog.Logger
}

func NewChromeLauncher(cfg *config.Config, logger zerolog.Logger) *ChromeLauncher {
	return &ChromeLauncher{chromePath: strings.TrimSpace(cfg.ChromePath), logger: logger}
}

// Launch starts a fresh browser process bound to ctx, so a cancelled
// request tears the process down even before Close runs.
func (l *ChromeLauncher) Launch(ctx context.Context) (Page, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1366, 900),
	)
	if l.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(l.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	id, err := gonanoid.New(10)
	if err != nil {
		id = "unknown"
	}

	page := &chromePage{
		id:            id,
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		logger:        l.logger.With().Str("session", id).Logger(),
	}

	// The first Run allocates the browser; it must not carry a timeout or
	// the timeout would later kill the whole process.
	err = chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
	)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	page.logger.Debug().Msg("browser launched")
	return page, nil
}

type chromePage struct {
	id            string
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	logger        zerolog.Logger
	closeOnce     sync.Once
	closeErr      error
}

func (p *chromePage) ID() string { return p.id }

// run ties the action to both the browser and the caller's context.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	p.logger.Debug().Str("url", url).Msg("navigating")
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) WaitReady(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out))
}

func (p *chromePage) OuterHTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = chromedp.Cancel(p.ctx)
		p.cancelBrowser()
		p.cancelAlloc()
		p.logger.Debug().Msg("browser closed")
	})
	return p.closeErr
}
