package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/funvibe/caselower/internal/cache"
	"github.com/funvibe/caselower/internal/config"
	"github.com/funvibe/caselower/internal/lower"
	"github.com/funvibe/caselower/internal/pipeline"
	"github.com/funvibe/caselower/internal/utils"
)

const usage = `Usage: caselower [flags] <fixture|dir>...
       caselower check [flags] <fixture|dir>...
       caselower cache clean

Lowers typed switch fixtures into case expressions. "check" compares the
output with each fixture's expect and diagnostics keys.

Flags:
`

type options struct {
	configPath string
	format     string
	useCache   bool
	verbose    bool
	check      bool
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	args := os.Args[1:]
	if len(args) >= 2 && args[0] == "cache" && args[1] == "clean" {
		if err := cleanCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	var opts options
	if len(args) >= 1 && args[0] == "check" {
		opts.check = true
		args = args[1:]
	}

	fs := flag.NewFlagSet("caselower", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "naming configuration (default: caselower.yaml found from the working directory up)")
	fs.StringVar(&opts.format, "format", pipeline.FormatText, "output format: text or json")
	fs.BoolVar(&opts.useCache, "cache", false, "reuse results stored in .caselower/cache.db")
	fs.BoolVar(&opts.verbose, "v", false, "trace lowering decisions to stderr")
	_ = fs.Parse(args)

	if opts.format != pipeline.FormatText && opts.format != pipeline.FormatJSON {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", opts.format)
		os.Exit(2)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	files, err := collectFixtures(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No fixtures found")
		return
	}

	if !run(files, opts, os.Stdout, os.Stderr) {
		os.Exit(1)
	}
}

// run lowers every file and reports the results. It returns false when
// any fixture failed.
func run(files []string, opts options, stdout, stderr io.Writer) bool {
	cfgPath, cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return false
	}

	stages := []pipeline.Processor{pipeline.LoadProcessor{}}

	var (
		store       *cache.Cache
		fingerprint []byte
	)
	if opts.useCache {
		if store, err = cache.Open(cache.DefaultPath(projectDir(cfgPath, files))); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return false
		}
		defer store.Close()
		if fingerprint, err = cache.Fingerprint(cfgPath); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return false
		}
		stages = append(stages, &cache.LookupProcessor{Cache: store, ConfigData: fingerprint})
	}
	stages = append(stages,
		&lower.Processor{Logger: traceLogger(opts.verbose, stderr)},
		pipeline.RenderProcessor{},
	)
	if opts.check {
		stages = append(stages, pipeline.CheckProcessor{})
	}
	if store != nil {
		stages = append(stages, &cache.StoreProcessor{Cache: store, ConfigData: fingerprint})
	}
	p := pipeline.New(stages...)

	rep := newReporter(stderr)
	ok := true
	for _, file := range files {
		ctx := pipeline.NewContext(file, cfg)
		ctx.Format = opts.format
		ctx = p.Run(ctx)

		if !opts.check && ctx.Rendered != "" {
			if len(files) > 1 {
				fmt.Fprintf(stdout, "# %s\n", file)
			}
			fmt.Fprintln(stdout, ctx.Rendered)
		}
		rep.report(ctx.Errors)
		if ctx.Failed() {
			ok = false
			if opts.check {
				fmt.Fprintf(stdout, "FAIL %s\n", file)
			}
		} else if opts.check {
			suffix := ""
			if ctx.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(stdout, "ok   %s%s\n", file, suffix)
		}
	}
	return ok
}

func loadConfig(path string) (string, *config.Config, error) {
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return "", nil, err
		}
		if found == "" {
			return "", config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

// projectDir places the cache next to the configuration, or next to the
// first fixture when there is none.
func projectDir(cfgPath string, files []string) string {
	if cfgPath != "" {
		return filepath.Dir(cfgPath)
	}
	if len(files) > 0 {
		return utils.GetProjectDir(files[0])
	}
	return "."
}

func traceLogger(verbose bool, w io.Writer) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(w, "[lower] ", 0)
}

// collectFixtures expands directories into the fixture files they
// contain, skipping the naming configuration.
func collectFixtures(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !utils.HasFixtureExt(name) || utils.IsConfigFile(name) {
				continue
			}
			files = append(files, filepath.Join(arg, name))
		}
	}
	return files, nil
}

func cleanCache() error {
	path := cache.DefaultPath(".")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	c, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Clean()
}
