// Command nojs-check compiles every element template of a Go module and reports
// compile errors with source context. With -format yaml it also dumps the compiled
// instruction tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/vcrobe/nojs-templating/compiler"
	"github.com/vcrobe/nojs-templating/config"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/inspect"
)

func main() {
	dir := flag.String("in", ".", "Directory inside the Go module to check.")
	configPath := flag.String("config", "", "Config file (nojs.yaml or nojs.toml). Defaults to one found in the module root.")
	format := flag.String("format", "", "Output format: text or yaml. Overrides output.format.")
	devMode := flag.Bool("dev", false, "Reject elements with more than one template controller.")
	flag.Parse()

	console.ConfigureRuntime()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ok, err := run(ctx, *dir, *configPath, *format, *devMode)
	if err != nil {
		console.Error("nojs-check:", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(ctx context.Context, dir, configPath, format string, devMode bool) (bool, error) {
	root, err := config.FindModuleRoot(dir)
	if err != nil {
		return false, err
	}
	modulePath, err := config.ModulePath(root)
	if err != nil {
		return false, err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(root)
	}
	if err != nil {
		return false, err
	}
	if format != "" {
		cfg.Output.Format = format
	}
	cfg.Compiler.DevMode = cfg.Compiler.DevMode || devMode
	if err := cfg.Validate(); err != nil {
		return false, err
	}

	searchRoot := cfg.Templates.Root
	if !filepath.IsAbs(searchRoot) {
		searchRoot = filepath.Join(root, searchRoot)
	}
	console.Debug().Str("module", modulePath).Str("root", searchRoot).Str("pattern", cfg.Templates.Pattern).Msg("checking templates")

	components, err := inspect.Discover(ctx, searchRoot, cfg.Templates.Pattern)
	if err != nil {
		return false, err
	}

	c := compiler.New(nil)
	c.StrictLifting = cfg.Compiler.DevMode
	c.DefaultViewCacheSize = cfg.Runtime.ViewCacheSize
	report, err := inspect.NewChecker(c).Check(modulePath, components)
	if err != nil {
		return false, err
	}

	switch cfg.Output.Format {
	case config.FormatYAML:
		err = report.WriteYAML(os.Stdout)
	default:
		err = report.WriteText(os.Stdout)
	}
	if err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}
	return report.OK(), nil
}
