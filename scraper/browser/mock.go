package browser

import (
	"context"
	"fmt"
	"sync"
)

// MockLauncher hands out a scripted session for tests.
type MockLauncher struct {
	Session *MockSession
	Err     error // returned by Launch when set
}

func (l *MockLauncher) Launch(context.Context) (Session, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Session, nil
}

// MockSession serves the same MockPage for every NewPage call and records
// whether Close ran.
type MockSession struct {
	mu     sync.Mutex
	Page   *MockPage
	closed bool
}

func (s *MockSession) NewPage(context.Context) (Page, error) {
	return s.Page, nil
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MockSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// MockPage serves canned content and evaluation results keyed by the URL of
// the last Goto.
type MockPage struct {
	mu      sync.Mutex
	HTML    map[string]string // url -> content
	Eval    map[string]any    // url -> Evaluate result
	GotoErr map[string]error  // url -> navigation failure
	visited []string
	current string
	closes  int
}

func (p *MockPage) Goto(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.GotoErr[url]; err != nil {
		return err
	}
	p.visited = append(p.visited, url)
	p.current = url
	return nil
}

func (p *MockPage) Evaluate(string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.Eval[p.current]
	if !ok {
		return nil, fmt.Errorf("no scripted evaluation for %s", p.current)
	}
	return v, nil
}

func (p *MockPage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	html, ok := p.HTML[p.current]
	if !ok {
		return "", fmt.Errorf("no scripted content for %s", p.current)
	}
	return html, nil
}

func (p *MockPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

// Visited returns the navigation history in order.
func (p *MockPage) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}
