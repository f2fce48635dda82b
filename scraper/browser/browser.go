// Package browser narrows headless-browser automation to the minimal
// surface the scraper depends on: launch a session, open pages, navigate,
// evaluate, close. The production implementation drives Playwright.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	ua "github.com/lib4u/fake-useragent"
	"github.com/playwright-community/playwright-go"
)

// Page is one browser tab.
type Page interface {
	Goto(ctx context.Context, url string) error
	Evaluate(js string) (any, error)
	Content() (string, error)
	Close() error
}

// Session is one browser process. Sessions are not reused across scrape
// jobs.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher acquires browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

const navigationTimeoutMs = 30000

type playwrightLauncher struct {
	logger *slog.Logger
}

// NewLauncher returns a Launcher backed by headless Chromium.
func NewLauncher(logger *slog.Logger) Launcher {
	return &playwrightLauncher{logger: logger}
}

func (l *playwrightLauncher) Launch(context.Context) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("unable to start playwright in Launch: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("unable to launch chromium in Launch: %w", err)
	}
	agents, err := ua.New()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("unable to load user agents in Launch: %w", err)
	}

	l.logger.Debug("browser session started")
	return &session{logger: l.logger, pw: pw, browser: b, ua: agents}, nil
}

type session struct {
	logger  *slog.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	ua      *ua.UserAgent
}

// NewPage opens a tab in a fresh context with a random desktop User-Agent.
func (s *session) NewPage(context.Context) (Page, error) {
	bctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(s.ua.GetRandom()),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create browser context in NewPage: %w", err)
	}
	p, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("unable to open page in NewPage: %w", err)
	}
	return &page{p: p, bctx: bctx}, nil
}

func (s *session) Close() error {
	err := s.browser.Close()
	if stopErr := s.pw.Stop(); err == nil {
		err = stopErr
	}
	s.logger.Debug("browser session closed")
	return err
}

type page struct {
	p    playwright.Page
	bctx playwright.BrowserContext
}

func (p *page) Goto(_ context.Context, url string) error {
	_, err := p.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	})
	if err != nil {
		return fmt.Errorf("unable to navigate to %s in Goto: %w", url, err)
	}
	return nil
}

func (p *page) Evaluate(js string) (any, error) {
	v, err := p.p.Evaluate(js)
	if err != nil {
		return nil, fmt.Errorf("unable to evaluate script in Evaluate: %w", err)
	}
	return v, nil
}

func (p *page) Content() (string, error) {
	c, err := p.p.Content()
	if err != nil {
		return "", fmt.Errorf("unable to read page content in Content: %w", err)
	}
	return c, nil
}

func (p *page) Close() error {
	err := p.p.Close()
	if cerr := p.bctx.Close(); err == nil {
		err = cerr
	}
	return err
}
