// Package rod drives a Chromium page as the automation desktop: the viewport
// is the screen, CDP input events are the mouse and keyboard, and tabs are
// windows.
package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	_ output.ScreenPort = (*DesktopAdapter)(nil)
	_ output.InputPort  = (*DesktopAdapter)(nil)
	_ output.WindowPort = (*DesktopAdapter)(nil)
)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
	defaultWidth      = 1280
	defaultHeight     = 800
)

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// StartURL is loaded into the first tab.
	StartURL string
	Width    int
	Height   int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		StartURL:   "about:blank",
		Width:      defaultWidth,
		Height:     defaultHeight,
	}
}

type DesktopAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	width    int
	height   int
	logger   output.LoggerPort

	mu     sync.Mutex
	page   *rod.Page
	closed bool
}

func NewDesktopAdapter(ctx context.Context, cfg BrowserConfig, logger output.LoggerPort) (*DesktopAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "about:blank"
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	a := &DesktopAdapter{
		browser:  browser,
		launcher: l,
		timeout:  cfg.Timeout,
		width:    cfg.Width,
		height:   cfg.Height,
		logger:   logger,
	}
	page, err := a.openPage(cfg.StartURL)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.page = page
	logger.Info("Browser desktop ready", "url", cfg.StartURL, "width", cfg.Width, "height", cfg.Height)
	return a, nil
}

func (a *DesktopAdapter) openPage(url string) (*rod.Page, error) {
	page, err := a.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             a.width,
		Height:            a.height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	if err := page.Timeout(a.timeout).WaitLoad(); err != nil {
		a.logger.Warn("Page did not finish loading", "url", url, "error", err)
	}
	return page, nil
}

// current returns the active tab bound to ctx.
func (a *DesktopAdapter) current(ctx context.Context) (*rod.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.page == nil {
		return nil, entity.NewActionFailedError("browser", entity.FailureUnknown, fmt.Errorf("browser is closed"))
	}
	return a.page.Context(ctx).Timeout(a.timeout), nil
}

func (a *DesktopAdapter) ScreenSize(ctx context.Context) (int, int, error) {
	page, err := a.current(ctx)
	if err != nil {
		return 0, 0, err
	}
	res, err := page.Eval(`() => ({w: window.innerWidth, h: window.innerHeight})`)
	if err != nil {
		return 0, 0, fmt.Errorf("read viewport size: %w", err)
	}
	w, h := viewportSize(res.Value)
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("browser reported an empty viewport %dx%d", w, h)
	}
	return w, h, nil
}

func viewportSize(v gson.JSON) (int, int) {
	return v.Get("w").Int(), v.Get("h").Int()
}

func (a *DesktopAdapter) capture(page *rod.Page, clip *proto.PageViewport, bounds entity.Rect, source string) (*entity.Frame, error) {
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip:   clip,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if bounds.Empty() {
		bounds = entity.RectFromImage(img.Bounds())
	}
	return entity.NewFrame(img, bounds, source), nil
}

func (a *DesktopAdapter) CaptureFullScreen(ctx context.Context) (*entity.Frame, error) {
	page, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	return a.capture(page, nil, entity.Rect{}, "rod")
}

func (a *DesktopAdapter) CaptureRegion(ctx context.Context, region entity.Rect) (*entity.Frame, error) {
	page, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	return a.capture(page, &proto.PageViewport{
		X:      float64(region.X),
		Y:      float64(region.Y),
		Width:  float64(region.Width),
		Height: float64(region.Height),
		Scale:  1,
	}, region, "rod")
}

// CaptureWindow screenshots the first tab whose title contains title. Tabs
// share the viewport origin, so the frame starts at 0,0.
func (a *DesktopAdapter) CaptureWindow(ctx context.Context, title string) (*entity.Frame, error) {
	page, _, err := a.find(title)
	if err != nil {
		return nil, err
	}
	return a.capture(page.Context(ctx).Timeout(a.timeout), nil, entity.Rect{}, "rod:"+title)
}

func (a *DesktopAdapter) MoveTo(ctx context.Context, p entity.Point) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.MoveTo(proto.Point{X: float64(p.X), Y: float64(p.Y)})
}

func (a *DesktopAdapter) MouseDown(ctx context.Context, button entity.MouseButton) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.Down(mouseButton(button), 1)
}

func (a *DesktopAdapter) MouseUp(ctx context.Context, button entity.MouseButton) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.Up(mouseButton(button), 1)
}

func (a *DesktopAdapter) Click(ctx context.Context, button entity.MouseButton, count int) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.Click(mouseButton(button), max(count, 1))
}

// Scroll turns wheel clicks into CDP wheel deltas; negative dy scrolls up.
func (a *DesktopAdapter) Scroll(ctx context.Context, dx, dy int) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.Scroll(float64(dx*wheelPixels), float64(dy*wheelPixels), max(1, abs(dx), abs(dy)))
}

func (a *DesktopAdapter) CursorPosition(ctx context.Context) (entity.Point, error) {
	page, err := a.current(ctx)
	if err != nil {
		return entity.Point{}, err
	}
	pos := page.Mouse.Position()
	return entity.Point{X: int(pos.X), Y: int(pos.Y)}, nil
}

func (a *DesktopAdapter) KeyDown(ctx context.Context, key string) error {
	k, err := keyFor(key)
	if err != nil {
		return err
	}
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Keyboard.Press(k)
}

func (a *DesktopAdapter) KeyUp(ctx context.Context, key string) error {
	k, err := keyFor(key)
	if err != nil {
		return err
	}
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	return page.Keyboard.Release(k)
}

func (a *DesktopAdapter) TypeText(ctx context.Context, text string) error {
	page, err := a.current(ctx)
	if err != nil {
		return err
	}
	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	return nil
}

// Open treats app as a URL and opens it in a new active tab.
func (a *DesktopAdapter) Open(ctx context.Context, app string) error {
	page, err := a.openPage(app)
	if err != nil {
		return err
	}
	if _, err := page.Activate(); err != nil {
		return fmt.Errorf("activate %s: %w", app, err)
	}
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	return nil
}

func (a *DesktopAdapter) find(title string) (*rod.Page, *proto.TargetTargetInfo, error) {
	pages, err := a.browser.Pages()
	if err != nil {
		return nil, nil, fmt.Errorf("list tabs: %w", err)
	}
	want := strings.ToLower(title)
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(info.Title), want) || strings.Contains(strings.ToLower(info.URL), want) {
			return p, info, nil
		}
	}
	return nil, nil, entity.NewNotFoundError("find window", "window "+title)
}

// Close closes the matching tab. Without force the page's beforeunload
// hooks run and may keep it open.
func (a *DesktopAdapter) Close(ctx context.Context, title string, force bool) error {
	page, _, err := a.find(title)
	if err != nil {
		return err
	}
	if force {
		err = page.Close()
	} else {
		err = proto.PageClose{}.Call(page)
	}
	if err != nil {
		return fmt.Errorf("close %s: %w", title, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.page != nil && a.page.TargetID == page.TargetID {
		a.page = nil
		if rest, err := a.browser.Pages(); err == nil && len(rest) > 0 {
			a.page = rest.First()
		}
	}
	return nil
}

func (a *DesktopAdapter) Switch(ctx context.Context, title string) error {
	page, _, err := a.find(title)
	if err != nil {
		return err
	}
	if _, err := page.Activate(); err != nil {
		return fmt.Errorf("activate %s: %w", title, err)
	}
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	return nil
}

func (a *DesktopAdapter) Resize(ctx context.Context, title string, width, height int) error {
	page, _, err := a.find(title)
	if err != nil {
		return err
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("resize %s: %w", title, err)
	}
	return nil
}

func (a *DesktopAdapter) List(ctx context.Context) ([]output.WindowInfo, error) {
	pages, err := a.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	a.mu.Lock()
	active := a.page
	a.mu.Unlock()

	out := make([]output.WindowInfo, 0, len(pages))
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		out = append(out, output.WindowInfo{
			Title:  info.Title,
			Bounds: entity.NewRect(0, 0, a.width, a.height),
			Active: active != nil && p.TargetID == active.TargetID,
		})
	}
	return out, nil
}

// Shutdown closes the browser and kills its process.
func (a *DesktopAdapter) Shutdown() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher.Cleanup()
	}
}
