package platform

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Credentials are the login details for one platform.
type Credentials struct {
	Email    string
	Password string
}

// Session is one live browser for one platform. It is opened lazily on
// first use within a pass and lives until the pool is closed.
type Session struct {
	name     string
	ctx      context.Context
	cancels  []context.CancelFunc
	LoggedIn bool
}

// Run executes chromedp actions against the session with a deadline.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// visible reports whether sel becomes visible within wait.
func (s *Session) visible(sel string, wait time.Duration) bool {
	return s.Run(wait, chromedp.WaitVisible(sel, by(sel))) == nil
}

// location returns the current page URL.
func (s *Session) location() string {
	var loc string
	if err := s.Run(5*time.Second, chromedp.Location(&loc)); err != nil {
		return ""
	}
	return loc
}

func (s *Session) close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// SessionPool holds at most one browser session per platform for the
// duration of a single workflow pass. Jobs within a pass run
// sequentially, so no locking is needed; the orchestrator guarantees
// CloseAll runs before control returns to the scheduler.
type SessionPool struct {
	sessions map[string]*Session
}

func NewSessionPool() *SessionPool {
	return &SessionPool{sessions: map[string]*Session{}}
}

// Get returns the open session for a platform, launching a browser on
// first use. A launch failure is an environment-level fault.
func (p *SessionPool) Get(name string, headless bool) (*Session, error) {
	if s, ok := p.sessions[name]; ok {
		return s, nil
	}

	// The browser must outlive any single call's deadline; its
	// lifetime is bounded by CloseAll, not by the caller's context.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		name:    name,
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelBrowser},
	}

	// Running with no actions starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		s.close()
		return nil, fmt.Errorf("launching browser for %s: %w", name, err)
	}

	log.Printf("Opened browser session for %s", name)
	p.sessions[name] = s
	return s, nil
}

// Open reports how many sessions are currently alive (used in tests).
func (p *SessionPool) Open() int {
	return len(p.sessions)
}

// CloseAll tears down every session. Safe to call when none were opened.
func (p *SessionPool) CloseAll() {
	for name, s := range p.sessions {
		s.close()
		log.Printf("Closed browser session for %s", name)
		delete(p.sessions, name)
	}
}

// by picks the chromedp selector mode: XPath for //... expressions,
// CSS otherwise.
func by(sel string) chromedp.QueryOption {
	if strings.HasPrefix(sel, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}
