package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"desktop-agent/internal/di"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/config"
	"desktop-agent/internal/infrastructure/env"
	"desktop-agent/internal/usecase/ocr"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	appEnv := env.LoadDotenv("")
	envService := env.NewEnvService(env.Prefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runActions(ctx, envService, os.Args[2:])
	case "locate":
		err = runLocate(ctx, envService, os.Args[2:])
	case "ocr":
		err = runOCR(ctx, envService, os.Args[2:])
	case "layout":
		err = runLayout(ctx, envService, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", appEnv, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: agent <command> [flags]

Commands:
  run <actions.json>   execute a JSON array of actions
  locate <description> find an element and print candidates
  ocr                  read the whole screen
  layout               summarize the screen layout

Common flags:
  --config <file>      YAML config (default $DESKTOP_AGENT_CONFIG)
  --image <file>       use a screenshot instead of the browser desktop
`)
}

type commonFlags struct {
	config *string
	image  *string
}

func newFlagSet(name string, envService *env.EnvService) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, commonFlags{
		config: fs.String("config", envService.Get("CONFIG"), "Path to config file"),
		image:  fs.String("image", "", "Screenshot to run against"),
	}
}

func openContainer(ctx context.Context, name string, envService *env.EnvService, flags commonFlags) (*di.Container, error) {
	cfg, err := config.Load(*flags.config, envService)
	if err != nil {
		return nil, err
	}
	runName := fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
	return di.NewContainer(ctx, cfg, di.Options{RunName: runName, ImagePath: *flags.image})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runActions(ctx context.Context, envService *env.EnvService, args []string) error {
	fs, flags := newFlagSet("run", envService)
	withRetry := fs.Bool("retry", false, "Run each action under the retry coordinator and retune its ceiling afterwards")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("run needs exactly one actions file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read actions: %w", err)
	}
	actions, err := entity.DecodeActions(data)
	if err != nil {
		return err
	}

	container, err := openContainer(ctx, "run", envService, flags)
	if err != nil {
		return err
	}
	defer container.Close()

	container.Logger.Info("Sequence started", "actions", len(actions), "retry", *withRetry)

	var results []entity.ActionResult
	if *withRetry {
		results = container.Executor.ExecuteSequenceWithRetry(ctx, actions)
	} else {
		results = container.Executor.ExecuteSequence(ctx, actions)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	container.Logger.Info("Sequence finished", "executed", len(results), "failed", failed)

	if err := printJSON(map[string]any{
		"results":    results,
		"retry":      container.Retry.Statistics(),
		"ocr_engine": container.OCR.Statistics(),
	}); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(results))
	}
	return nil
}

func runLocate(ctx context.Context, envService *env.EnvService, args []string) error {
	fs, flags := newFlagSet("locate", envService)
	click := fs.Bool("click", false, "Click the best match")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("locate needs exactly one description")
	}
	description := fs.Arg(0)

	container, err := openContainer(ctx, "locate", envService, flags)
	if err != nil {
		return err
	}
	defer container.Close()

	if *click {
		res := container.Perception.FindAndClick(ctx, description)
		if err := printJSON(res); err != nil {
			return err
		}
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	}

	frame, err := container.Perception.See(ctx, true)
	if err != nil {
		return err
	}
	candidates := container.Locator.FindElement(ctx, description, frame)
	return printJSON(candidates)
}

func runOCR(ctx context.Context, envService *env.EnvService, args []string) error {
	fs, flags := newFlagSet("ocr", envService)
	engine := fs.String("engine", "", "Preferred OCR engine")
	preprocess := fs.String("preprocess", string(entity.PreprocessNone), "Preprocessing method")
	_ = fs.Parse(args)

	container, err := openContainer(ctx, "ocr", envService, flags)
	if err != nil {
		return err
	}
	defer container.Close()

	frame, err := container.Perception.See(ctx, true)
	if err != nil {
		return err
	}
	res := container.OCR.ExtractText(ctx, frame, ocr.ExtractOptions{
		Preferred:  *engine,
		Preprocess: entity.PreprocessMethod(*preprocess),
	})
	if err := printJSON(res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New("no text recognized")
	}
	return nil
}

func runLayout(ctx context.Context, envService *env.EnvService, args []string) error {
	fs, flags := newFlagSet("layout", envService)
	_ = fs.Parse(args)

	container, err := openContainer(ctx, "layout", envService, flags)
	if err != nil {
		return err
	}
	defer container.Close()

	frame, err := container.Perception.See(ctx, true)
	if err != nil {
		return err
	}
	return printJSON(container.Locator.AnalyzeLayout(ctx, frame))
}
