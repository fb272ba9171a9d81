package charsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-charsheet/internal/fileutil"
	"github.com/alnah/go-charsheet/internal/process"
)

// Renderer turns one self-contained HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Compile-time interface check.
var _ Renderer = (*Backend)(nil)

// Page geometry: US Letter, 16mm top and bottom, 12mm left and right.
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginTopBottom   = 16 / 25.4
	marginLeftRight   = 12 / 25.4
)

// healthTimeout bounds the health check of an existing browser.
const healthTimeout = 2 * time.Second

// blockedURLs are refused inside render tabs; sections load only from
// their own temp file and data: URLs.
var blockedURLs = []string{"http://*", "https://*", "ws://*", "wss://*", "ftp://*"}

// BackendOptions configures a Backend.
type BackendOptions struct {
	Timeout    time.Duration // per render when the context has no deadline
	Workers    int           // concurrent tabs; 0 = ResolvePoolSize(0)
	BrowserBin string        // empty = ROD_BROWSER_BIN or a managed Chromium
	NoSandbox  bool
	Logger     *zap.Logger
}

// Backend renders HTML with one shared headless Chrome. The browser starts
// on first use, is reused while connected and is relaunched when it is not.
// Every render uses its own tab, closed on every exit path.
type Backend struct {
	opts   BackendOptions
	logger *zap.Logger
	tabs   *tabPool

	// life bounds the browser process; Close cancels it.
	life context.Context
	stop context.CancelFunc

	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	launching *launchCall
	closed    bool
}

// launchCall is one browser start shared by every render waiting for it.
type launchCall struct {
	done    chan struct{}
	browser *rod.Browser
	err     error
}

// NewBackend creates a Backend. No browser is started until the first
// Render.
func NewBackend(opts BackendOptions) *Backend {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BrowserBin == "" {
		opts.BrowserBin = os.Getenv("ROD_BROWSER_BIN")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	life, stop := context.WithCancel(context.Background())
	return &Backend{
		opts:   opts,
		logger: logger,
		tabs:   newTabPool(ResolvePoolSize(opts.Workers)),
		life:   life,
		stop:   stop,
	}
}

// acquire reserves a tab slot.
func (b *Backend) acquire(ctx context.Context) error {
	return b.tabs.acquire(ctx)
}

// release returns a tab slot.
func (b *Backend) release() {
	b.tabs.release()
}

// Render prints html to a US Letter PDF. The whole call, browser start
// included, is bounded by ctx's deadline or BackendOptions.Timeout.
func (b *Backend) Render(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, backendErr(err)
	}

	timeout := renderTimeout(ctx, b.opts.Timeout)
	if timeout <= 0 {
		return nil, backendErr(context.DeadlineExceeded)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := b.acquire(ctx); err != nil {
		return nil, backendErr(err)
	}
	defer b.release()

	browser, err := b.ensureBrowser(ctx)
	if err != nil {
		return nil, backendErr(err)
	}

	path, cleanup, err := fileutil.WriteTemp("charsheet-section-*.html", []byte(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer cleanup()

	return renderFile(ctx, browser, path)
}

// renderFile opens a fresh tab, loads path with scripts and network
// disabled and prints it.
func renderFile(ctx context.Context, browser *rod.Browser, path string) ([]byte, error) {
	tab, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	// ctx may be done by now; the tab is closed on its own short budget.
	defer func() { _ = tab.Context(context.Background()).Timeout(healthTimeout).Close() }()

	if err := prepareTab(tab); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := tab.Navigate("file://" + path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := tab.PDF(pdfOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// prepareTab disables scripts, emulates print media and blocks remote
// requests.
func prepareTab(page *rod.Page) error {
	if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
		return err
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return err
	}
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return err
	}
	return proto.NetworkSetBlockedURLs{Urls: blockedURLs}.Call(page)
}

func pdfOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginTopBottom),
		MarginBottom:    floatPtr(marginTopBottom),
		MarginLeft:      floatPtr(marginLeftRight),
		MarginRight:     floatPtr(marginLeftRight),
		PrintBackground: true,
	}
}

// renderTimeout returns the time left before ctx's deadline, or def when
// ctx has none.
func renderTimeout(ctx context.Context, def time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return def
}

// backendErr classifies a context failure as a backend failure while
// keeping the context error matchable.
func backendErr(err error) error {
	if errors.Is(err, ErrRenderBackend) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrRenderBackend, err)
	}
	return err
}

// ensureBrowser returns the shared browser. A missing or disconnected
// browser is started in the background; the caller waits for it only as
// long as ctx allows, and b.mu is never held while a browser starts.
func (b *Backend) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	browser, call, err := b.currentOrLaunch(ctx)
	if browser != nil || err != nil {
		return browser, err
	}

	select {
	case <-call.done:
		return call.browser, call.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for browser: %w", ctx.Err())
	}
}

// currentOrLaunch returns the live browser, or the launch to wait for.
func (b *Backend) currentOrLaunch(ctx context.Context) (*rod.Browser, *launchCall, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBackendClosed
	}
	if b.browser != nil {
		if b.aliveLocked(ctx) {
			return b.browser, nil, nil
		}
		b.logger.Info("browser disconnected, relaunching")
		_ = b.shutdownLocked()
	}

	if b.launching == nil {
		b.launching = &launchCall{done: make(chan struct{})}
		go b.launch(b.launching)
	}
	return nil, b.launching, nil
}

// launch starts a browser and publishes it to b and to every waiter.
func (b *Backend) launch(call *launchCall) {
	l, browser, err := b.start()

	b.mu.Lock()
	defer b.mu.Unlock()
	defer close(call.done)

	b.launching = nil
	if err == nil && b.closed {
		_ = browser.Close()
		l.Kill()
		browser, err = nil, ErrBackendClosed
	}
	if err == nil {
		b.browser, b.launcher = browser, l
		b.logger.Debug("browser launched", zap.Int("pid", l.PID()), zap.Int("tabs", b.tabs.size()))
	}
	call.browser, call.err = browser, err
}

// start launches and connects a browser bound to the backend's lifetime.
func (b *Backend) start() (*launcher.Launcher, *rod.Browser, error) {
	l := launcher.New().Context(b.life)
	if b.opts.BrowserBin != "" {
		l = l.Bin(b.opts.BrowserBin)
	}
	// NoSandbox required for CI and containerized environments
	if b.opts.NoSandbox || os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().Context(b.life).ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return l, browser, nil
}

// Connected reports whether the shared browser is running and answering.
func (b *Backend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browser != nil && b.aliveLocked(context.Background())
}

func (b *Backend) aliveLocked(ctx context.Context) bool {
	_, err := proto.BrowserGetVersion{}.Call(b.browser.Context(ctx).Timeout(healthTimeout))
	return err == nil
}

// Close stops the browser. Renders after Close fail with ErrBackendClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.stop()
	return b.shutdownLocked()
}

func (b *Backend) shutdownLocked() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			if kerr := process.KillTree(pid); kerr != nil {
				b.logger.Debug("killing browser processes", zap.Int("pid", pid), zap.Error(kerr))
			}
		}
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
