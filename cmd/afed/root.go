package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/diag"
	"github.com/funvibe/funxy/internal/docmt"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
	"github.com/funvibe/funxy/pkg/plugin"
	"github.com/funvibe/funxy/pkg/stdpkgs/num"
	"github.com/funvibe/funxy/pkg/stdpkgs/prs"
)

// cliConfig holds every spec.md §6 flag plus SPEC_FULL.md §13's additions.
type cliConfig struct {
	Input       string
	Output      string
	Check       bool
	Clear       bool
	NoClobber   bool
	Errors      string
	NoErrors    bool
	PluginDirs  []string
	NoLocalPkgs bool
	ConfigPath  string
	Describe    string
}

// fileConfig is the optional --config YAML document (SPEC_FULL.md §10.3):
// a default search path for plug-in directories plus an override for the
// Ratio/Real comparison tolerance.
type fileConfig struct {
	NumericTolerance *float64 `yaml:"numeric_tolerance"`
	PluginDirs       []string `yaml:"plugin_dirs"`
}

func newRootCmd() *cobra.Command {
	var cfg cliConfig
	var helpAlias bool

	cmd := &cobra.Command{
		Use:   "afed [-i] INPUT [[-o] OUTPUT]",
		Short: "Render an Afed document's substitutions in place",
		Long: `afed evaluates every substitution record of an Afed document and writes
the rendered result. "-" denotes standard input or standard output.`,
		Example: `  afed report.afed report.rendered.afed
  afed -i report.afed -o - -C
  afed --describe num.gcd`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpAlias {
				return cmd.Help()
			}
			if len(args) > 0 && cfg.Input == "" {
				cfg.Input = args[0]
			}
			if len(args) > 1 && cfg.Output == "" {
				cfg.Output = args[1]
			}
			return runAfed(cmd.Context(), &cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Input, "input", "i", "", "input path ('-' for stdin)")
	flags.StringVarP(&cfg.Output, "output", "o", "", "output path ('-' for stdout, default)")
	flags.BoolVarP(&cfg.Check, "check", "C", false, "check only, do not emit output")
	flags.BoolVarP(&cfg.Clear, "clear", "d", false, "emit with substitutions blanked")
	flags.BoolVarP(&cfg.NoClobber, "no-clobber", "n", false, "fail if input and output resolve to the same file")
	flags.StringVarP(&cfg.Errors, "errors", "e", "", "write diagnostics to this path instead of stderr")
	flags.BoolVarP(&cfg.NoErrors, "no-errors", "E", false, "discard diagnostics entirely")
	flags.StringArrayVarP(&cfg.PluginDirs, "plugin-dir", "L", nil, "additional plug-in directory (repeatable)")
	flags.BoolVar(&cfg.NoLocalPkgs, "no-local-pkgs", false, "do not load the built-in num/prs packages")
	flags.StringVar(&cfg.ConfigPath, "config", "", "optional YAML config file (numeric_tolerance, plugin_dirs)")
	flags.StringVar(&cfg.Describe, "describe", "", "print help for a loaded package or function, e.g. num.gcd, and exit")
	flags.BoolVarP(&helpAlias, "help-alias", "?", false, "alias for --help")
	flags.Lookup("help-alias").Hidden = true

	return cmd
}

func runAfed(ctx context.Context, cfg *cliConfig) error {
	if cfg.ConfigPath != "" {
		if err := applyFileConfig(cfg); err != nil {
			return err
		}
	}

	registry, err := loadPackages(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.Describe != "" {
		return describe(cfg.Describe, registry)
	}

	if cfg.Input == "" {
		return fmt.Errorf("afed: no input given (use INPUT or -i/--input)")
	}
	if cfg.NoClobber && resolveSame(cfg.Input, cfg.Output) {
		return fmt.Errorf("afed: input and output resolve to the same file")
	}

	src, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	sink, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	doc := docmt.NewDocument(src, cfg.Input, sink)
	doc.OnlyClear = cfg.Clear
	// Any name left unresolved after this becomes an UnresolvedNameError at
	// the substitution that references it, surfaced by Evaluate below.
	doc.Arena.Resolve([]engine.Handle{doc.Root}, handlesFor(doc.Arena, registry.Bindings()))

	errCount := doc.Evaluate()

	if cfg.Check {
		return exitStatus(errCount)
	}

	out, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.WriteString(out, doc.Render()); err != nil {
		return &ioWriteError{path: cfg.Output, err: err}
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "%s of %s substitutions failed to evaluate\n",
			humanize.Comma(int64(errCount)), humanize.Comma(int64(len(doc.Substitutions()))))
	}

	return exitStatus(errCount)
}

func exitStatus(errCount int) error {
	if errCount > 0 {
		return fmt.Errorf("afed: %d error(s) encountered", errCount)
	}
	return nil
}

type ioWriteError struct {
	path string
	err  error
}

func (e *ioWriteError) Error() string { return fmt.Sprintf("afed: writing %s: %v", e.path, e.err) }
func (e *ioWriteError) Unwrap() error { return e.err }

func applyFileConfig(cfg *cliConfig) error {
	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("afed: reading config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("afed: parsing config: %w", err)
	}
	cfg.PluginDirs = append(fc.PluginDirs, cfg.PluginDirs...)
	if fc.NumericTolerance != nil {
		config.NumericTolerance = *fc.NumericTolerance
	}
	return nil
}

// loadPackages builds the package Registry: the built-in num/prs packages
// (unless --no-local-pkgs) plus any gRPC plug-ins named by -L directories.
func loadPackages(ctx context.Context, cfg *cliConfig) (*pkgbuild.Registry, error) {
	reg := pkgbuild.NewRegistry(config.ProtocolVersion)

	if !cfg.NoLocalPkgs {
		for _, factory := range []pkgbuild.Factory{num.Build, prs.Build} {
			pkg, err := factory()
			if err != nil {
				return nil, fmt.Errorf("afed: loading built-in package: %w", err)
			}
			if err := reg.Register(pkg); err != nil {
				return nil, fmt.Errorf("afed: %w", err)
			}
		}
	}

	for _, dir := range cfg.PluginDirs {
		targets, err := pluginTargets(dir)
		if err != nil {
			return nil, fmt.Errorf("afed: scanning plug-in directory %s: %w", dir, err)
		}
		for _, target := range targets {
			pkg, err := plugin.Load(ctx, target)
			if err != nil {
				return nil, fmt.Errorf("afed: loading plug-in %s: %w", target, err)
			}
			if err := reg.Register(pkg); err != nil {
				return nil, fmt.Errorf("afed: %w", err)
			}
		}
	}

	return reg, nil
}

// pluginTargets reads every *.plugin file in dir, each naming one gRPC
// "host:port" address on its first line — the directory-of-descriptor-files
// stand-in for the Go-plugin-file loader contract spec.md §6 describes,
// reinterpreted for the process-isolated gRPC transport of SPEC_FULL.md §11.
func pluginTargets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".plugin" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0]); line != "" {
			targets = append(targets, line)
		}
	}
	return targets, nil
}

func handlesFor(arena *engine.Arena, bindings map[string]engine.Value) map[string]engine.Handle {
	out := make(map[string]engine.Handle, len(bindings))
	for name, v := range bindings {
		out[name] = arena.NewConstant(v)
	}
	return out
}

func describe(name string, registry *pkgbuild.Registry) error {
	bindings := registry.Bindings()
	pkgName, attr := name, ""
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		pkgName, attr = name[:idx], name[idx+1:]
	}
	v, ok := bindings[pkgName]
	if !ok {
		return fmt.Errorf("afed: no such package or global %q (known: %s)", pkgName, strings.Join(registry.Names(), ", "))
	}
	help, ok := v.Help(attr)
	if !ok || help == "" {
		return fmt.Errorf("afed: no help registered for %q", name)
	}
	fmt.Println(help)
	return nil
}

func resolveSame(input, output string) bool {
	if input == "-" || output == "" || output == "-" {
		return false
	}
	a, err1 := filepath.Abs(input)
	b, err2 := filepath.Abs(output)
	return err1 == nil && err2 == nil && a == b
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("afed: reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("afed: %w", err)
	}
	return string(data), nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("afed: creating output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// newSink builds the diagnostic Sink per -e/-E, colorizing via go-isatty
// exactly the way the teacher's own CLI decides whether to emit ANSI
// escapes, and returns a closer for the case -e opened a real file.
func newSink(cfg *cliConfig) (diag.Sink, func(), error) {
	if cfg.NoErrors {
		return &diag.DiscardSink{}, func() {}, nil
	}
	if cfg.Errors == "" || cfg.Errors == "-" {
		w := diag.NewWriterSink(os.Stderr)
		w.Colorize = isatty.IsTerminal(os.Stderr.Fd())
		return w, func() {}, nil
	}
	f, err := os.Create(cfg.Errors)
	if err != nil {
		return nil, nil, fmt.Errorf("afed: opening errors file: %w", err)
	}
	return diag.NewWriterSink(f), func() { f.Close() }, nil
}
