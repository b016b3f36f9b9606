// Package browsertest provides an in-memory browser.Launcher for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"league-tracker/internal/browser"
)

var ErrLaunch = errors.New("browsertest: launch failed")

// Page answers Evaluate calls with canned JSON, in the same way Chrome
// returns a serialized JS value.
type Page struct {
	NavigateErr error
	WaitErr     error
	HTML        string
	HTMLErr     error
	// EvalFunc receives the expression and the 1-based call number.
	EvalFunc func(expression string, call int) (string, error)
	// HangWait and HangEval block the call until its context is done.
	HangWait bool
	HangEval func(expression string) bool

	mu        sync.Mutex
	visited   []string
	evalCalls int
	closes    int
}

var _ browser.Page = (*Page)(nil)

func (p *Page) ID() string { return "fake" }

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.visited = append(p.visited, url)
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.NavigateErr
}

func (p *Page) WaitReady(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.HangWait {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.WaitErr
}

func (p *Page) Evaluate(ctx context.Context, expression string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.evalCalls++
	call := p.evalCalls
	p.mu.Unlock()

	if p.HangEval != nil && p.HangEval(expression) {
		<-ctx.Done()
		return ctx.Err()
	}

	raw := "null"
	if p.EvalFunc != nil {
		var err error
		raw, err = p.EvalFunc(expression, call)
		if err != nil {
			return err
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (p *Page) OuterHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.HTML, p.HTMLErr
}

func (p *Page) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	return nil
}

func (p *Page) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

func (p *Page) EvalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.evalCalls
}

func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

// Contains is a helper for EvalFuncs that dispatch on the script.
func Contains(expression, marker string) bool {
	return strings.Contains(expression, marker)
}

type Launcher struct {
	Page      *Page
	LaunchErr error

	mu       sync.Mutex
	launches int
}

func (l *Launcher) Launch(ctx context.Context) (browser.Page, error) {
	l.mu.Lock()
	l.launches++
	l.mu.Unlock()
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	return l.Page, nil
}

func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}
