package di

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/infrastructure/browser/rod"
	"desktop-agent/internal/infrastructure/clock"
	"desktop-agent/internal/infrastructure/config"
	"desktop-agent/internal/infrastructure/dryrun"
	"desktop-agent/internal/infrastructure/logger"
	"desktop-agent/internal/infrastructure/metrics"
	"desktop-agent/internal/infrastructure/ocr/tesseract"
	"desktop-agent/internal/infrastructure/ocr/visionllm"
	"desktop-agent/internal/infrastructure/screen/imagefile"
	"desktop-agent/internal/usecase/capture"
	"desktop-agent/internal/usecase/executor"
	"desktop-agent/internal/usecase/locator"
	"desktop-agent/internal/usecase/ocr"
	"desktop-agent/internal/usecase/perception"
	"desktop-agent/internal/usecase/retry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "desktop_agent"

type Container struct {
	Config     config.Config
	Logger     output.LoggerPort
	Metrics    *metrics.Collector
	Registry   *prometheus.Registry
	Screen     *capture.UseCase
	OCR        *ocr.Cascade
	Locator    *locator.Locator
	Retry      *retry.Coordinator
	Executor   *executor.UseCase
	Perception *perception.UseCase

	desktop       *rod.DesktopAdapter
	metricsServer *http.Server
}

type Options struct {
	// RunName names the log file.
	RunName string
	// ImagePath replaces the browser desktop with a screenshot and a dry-run
	// input device.
	ImagePath string
}

// Devices bundles the ports a container drives. Tests and alternative
// frontends supply their own.
type Devices struct {
	Screen  output.ScreenPort
	Input   output.InputPort
	Windows output.WindowPort
	Engines []output.OCRBackend
}

func NewContainer(ctx context.Context, cfg config.Config, opts Options) (*Container, error) {
	log, err := logger.NewLoggerAdapter(opts.RunName, logger.Options{
		Dir:    cfg.Log.Dir,
		Level:  cfg.Log.Level,
		Stderr: cfg.Log.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	engines, err := ocrEngines(cfg.OCR, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	var (
		devices = Devices{Engines: engines}
		desktop *rod.DesktopAdapter
	)
	if opts.ImagePath != "" {
		screen, err := imagefile.Open(opts.ImagePath)
		if err != nil {
			log.Close()
			return nil, err
		}
		device := dryrun.New(log)
		devices.Screen, devices.Input, devices.Windows = screen, device, device
	} else {
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Browser.Headless
		browserCfg.StartURL = cfg.Browser.StartURL
		browserCfg.Width = cfg.Browser.Width
		browserCfg.Height = cfg.Browser.Height
		browserCfg.Timeout = cfg.Browser.Timeout
		desktop, err = rod.NewDesktopAdapter(ctx, browserCfg, log)
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to create browser desktop: %w", err)
		}
		devices.Screen, devices.Input, devices.Windows = desktop, desktop, desktop
	}

	c := Build(cfg, devices, log, prometheus.NewRegistry())
	c.desktop = desktop
	if cfg.MetricsAddr != "" {
		c.serveMetrics(cfg.MetricsAddr)
	}
	return c, nil
}

// Build wires the use cases over already constructed devices.
func Build(cfg config.Config, devices Devices, log output.LoggerPort, reg *prometheus.Registry) *Container {
	collector := metrics.NewCollector(metricsNamespace, reg)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sleeper := clock.TimerSleeper{}

	screen := capture.New(devices.Screen, log, cfg.CacheTTL)
	cascade := ocr.NewCascade(devices.Engines, ocr.NewStatsStore(), log, collector, ocr.Config{BaseScores: baseScores(cfg.OCR.BaseScores)})
	loc := locator.New(cascade, log, collector)

	coord := retry.New(retry.Config{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseWait:   cfg.Retry.BaseWait,
		MaxWait:    cfg.Retry.MaxWait,
		OCREngines: cascade.Engines(),
	}, retry.NewStatsStore(), sleeper, rand.New(rand.NewSource(seed)), log, collector)

	execCfg := executor.DefaultConfig()
	execCfg.StopOnFailure = cfg.Executor.StopOnFailure
	execCfg.DefaultDelay = cfg.Executor.DefaultDelay
	execCfg.ClickRetryDelay = cfg.Executor.ClickRetryDelay
	execCfg.HumanMovement = cfg.Executor.HumanMovement
	execCfg.MoveDuration = cfg.Executor.MoveDuration
	execCfg.DragDuration = cfg.Executor.DragDuration
	exec := executor.New(execCfg, screen, devices.Input, devices.Windows, coord, sleeper, rand.New(rand.NewSource(seed+1)), log, collector)

	return &Container{
		Config:     cfg,
		Logger:     log,
		Metrics:    collector,
		Registry:   reg,
		Screen:     screen,
		OCR:        cascade,
		Locator:    loc,
		Retry:      coord,
		Executor:   exec,
		Perception: perception.New(screen, loc, cascade, exec, coord, sleeper, log),
	}
}

// baseScores overlays configured priors on the defaults.
func baseScores(overrides map[string]float64) map[string]float64 {
	scores := ocr.DefaultBaseScores()
	for name, s := range overrides {
		scores[name] = s
	}
	return scores
}

func ocrEngines(cfg config.OCR, log output.LoggerPort) ([]output.OCRBackend, error) {
	engines := make([]output.OCRBackend, 0, len(cfg.Engines))
	for _, name := range cfg.Engines {
		switch name {
		case tesseract.Name:
			engines = append(engines, tesseract.New(tesseract.Config{
				Languages: cfg.Tesseract.Languages,
				Lines:     cfg.Tesseract.Lines,
			}, log))
		case visionllm.Name:
			vcfg := visionllm.DefaultConfig(cfg.Vision.APIKey, cfg.Vision.Model)
			if cfg.Vision.BaseURL != "" {
				vcfg.BaseURL = cfg.Vision.BaseURL
			}
			if cfg.Vision.MaxImageWidth > 0 {
				vcfg.MaxImageWidth = cfg.Vision.MaxImageWidth
			}
			vcfg.RequestsPerSecond = cfg.Vision.RequestsPerSecond
			vcfg.Languages = cfg.Vision.Languages
			engines = append(engines, visionllm.New(vcfg, log))
		default:
			return nil, fmt.Errorf("unknown OCR engine %q", name)
		}
	}
	if len(engines) == 0 {
		return nil, errors.New("no OCR engines configured")
	}
	return engines, nil
}

func (c *Container) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	c.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Error("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
	c.Logger.Info("Serving metrics", "addr", addr)
}

func (c *Container) Close() {
	if c.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = c.metricsServer.Shutdown(ctx)
		cancel()
	}
	if c.desktop != nil {
		c.desktop.Shutdown()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
