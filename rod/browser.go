package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of pages rendered before the browser is
// replaced with a fresh process.
const DefaultMaxPages = 75

// browserPool owns one headless Chrome process and replaces it after
// maxPages pages. Chrome's memory baseline keeps growing under load even
// when pages are closed.
type browserPool struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	maxPages int
}

func newBrowserPool(maxPages int) (*browserPool, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	p := &browserPool{maxPages: maxPages}
	if err := p.launch(); err != nil {
		return nil, err
	}
	return p, nil
}

// acquire returns the current browser and counts one page against it. The
// browser is replaced first when it has reached its page budget; if the
// replacement fails to start the old browser keeps serving.
func (p *browserPool) acquire() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return nil, fmt.Errorf("browser not running")
	}
	if p.pages >= p.maxPages {
		p.recycle()
	}
	p.pages++
	return p.browser, nil
}

func (p *browserPool) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	p.browser = browser
	p.launcher = l
	return nil
}

// recycle must be called with mu held.
func (p *browserPool) recycle() {
	oldBrowser, oldLauncher := p.browser, p.launcher
	if err := p.launch(); err != nil {
		p.browser, p.launcher = oldBrowser, oldLauncher
		return
	}
	_ = oldBrowser.Close()
	oldLauncher.Kill()
	p.pages = 0
}

func (p *browserPool) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
	}
	if p.launcher != nil {
		p.launcher.Kill()
		p.launcher = nil
	}
	return err
}

func (p *browserPool) pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.launcher == nil {
		return 0
	}
	return p.launcher.PID()
}
