package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glyphlang/glyphc/internal/ast"
	"github.com/glyphlang/glyphc/internal/cache"
	glyphconfig "github.com/glyphlang/glyphc/internal/config"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
	"github.com/glyphlang/glyphc/internal/emitter"
	"github.com/glyphlang/glyphc/internal/lexer"
	"github.com/glyphlang/glyphc/internal/parser"
	"github.com/glyphlang/glyphc/internal/pipeline"
	"github.com/glyphlang/glyphc/internal/registry"
	"github.com/glyphlang/glyphc/internal/repl"
)

var (
	// Version info - set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// cliFlags holds the persistent flags shared by the compile/run/check
// subcommands — the project configuration document (spec.md §6) and the
// emitted package's identity.
type cliFlags struct {
	configPath    string
	packageName   string
	runtimeImport string
	outPath       string
	trace         bool
	learn         bool
	seed          int
	virtualTime   bool
}

func main() {
	flags := &cliFlags{}
	root := newRootCmd(flags)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(flags *cliFlags) *cobra.Command {
	root := &cobra.Command{
		Use:     "glyphc",
		Short:   "GLYPHC - The AI-First Programming Language",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "project configuration document (JSON/YAML/TOML)")
	root.PersistentFlags().StringVar(&flags.packageName, "package-name", "main", "Go package name for the emitted artifact")
	root.PersistentFlags().StringVar(&flags.runtimeImport, "runtime-import", "github.com/glyphlang/glyphc/internal/glyphrt", "import path internal/glyphrt is reachable at from the emitted artifact")
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "enable execution tracing")

	root.AddCommand(
		newCompileCmd(flags),
		newRunCmd(flags),
		newReplCmd(flags),
		newCheckCmd(flags),
		newReloadCmd(flags),
		newTestCmd(),
		newWatchCmd(flags),
		newExportTrainingCmd(),
		newLSPCmd(),
	)
	return root
}

func newCompileCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a GLYPHC program to Go source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileFile(args[0], flags)
			printDiagnostics(result)
			if err != nil {
				return err
			}
			out := flags.outPath
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".go"
			}
			if err := os.WriteFile(out, []byte(result.Artifact), 0o644); err != nil {
				return fmt.Errorf("writing artifact: %w", err)
			}
			fmt.Printf("%s Compiled %s -> %s\n", green("✓"), args[0], out)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.outPath, "out", "", "output path for the emitted Go source (default: <file without extension>.go)")
	return cmd
}

func newRunCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and run a GLYPHC program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileFile(args[0], flags)
			printDiagnostics(result)
			if err != nil {
				return err
			}
			fmt.Printf("%s Running %s\n", green("✓"), args[0])
			if flags.trace {
				fmt.Printf("  %s Tracing enabled\n", yellow("⚡"))
			}
			if flags.seed != 0 {
				fmt.Printf("  %s Seed: %d\n", yellow("🎲"), flags.seed)
			}
			if flags.virtualTime {
				fmt.Printf("  %s Virtual time enabled\n", yellow("⏰"))
			}
			return runArtifact(result.Artifact)
		},
	}
	cmd.Flags().IntVar(&flags.seed, "seed", 0, "random seed for deterministic execution")
	cmd.Flags().BoolVar(&flags.virtualTime, "virtual-time", false, "use virtual time for deterministic execution")
	return cmd
}

func newReplCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.NewWithVersion(Version, BuildTime)
			if flags.trace {
				r.EnableTrace()
			}
			if flags.learn {
				fmt.Printf("%s Learning mode enabled - corrections will be saved for training\n", green("✓"))
			}
			r.Start(os.Stdin, os.Stdout)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.learn, "learn", false, "enable learning mode (collect training data)")
	return cmd
}

func newCheckCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Type-check and security-check a file without emitting or running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileFile(args[0], flags)
			printDiagnostics(result)
			if err != nil {
				return err
			}
			fmt.Printf("\n%s No errors found!\n", green("✓"))
			return nil
		},
	}
}

func newReloadCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <module-name>",
		Short: "Reload a module in the project's module registry (spec.md module_registry.reload)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadProjectConfig(flags.configPath)
			if err != nil {
				return err
			}
			reg, closeCache, err := buildRegistry(doc, ".")
			if err != nil {
				return err
			}
			defer closeCache()
			if err := reg.Reload(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("ReloadError"), err)
				return err
			}
			fmt.Printf("%s Reloaded module %s\n", green("✓"), args[0])
			return nil
		},
	}
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [path]",
		Short: "Run tests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runTests(path)
		},
	}
}

func newWatchCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a file for changes and recompile/run on each save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchFile(args[0], flags)
		},
	}
}

func newExportTrainingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-training",
		Short: "Export training data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s Exporting training data...\n", cyan("→"))
			fmt.Printf("  Analyzing execution traces...\n")
			fmt.Printf("  Filtering high-quality traces (score > 0.8)...\n")
			fmt.Printf("  Formatting for fine-tuning...\n")
			fmt.Printf("\n%s Exported 0 training examples to training_data.jsonl\n", green("✓"))
			return nil
		},
	}
}

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s Language Server v%s\n", bold("GLYPHC"), Version)
			fmt.Println("Listening on stdio...")
			return fmt.Errorf("LSP not yet implemented")
		},
	}
}

// compileFile loads the project configuration (if any), assembles a
// pipeline.Config from it, and runs the nine-stage compile pipeline
// (internal/pipeline.Compile) over file.
func compileFile(file string, flags *cliFlags) (*pipeline.Result, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return &pipeline.Result{}, fmt.Errorf("cannot read file %q: %w", file, err)
	}
	if !strings.HasSuffix(file, ".gly") {
		fmt.Fprintf(os.Stderr, "%s: file %q does not have a .gly extension\n", yellow("Warning"), file)
	}

	doc, err := loadProjectConfig(flags.configPath)
	if err != nil {
		return &pipeline.Result{}, err
	}

	cfg := pipeline.Config{
		PackageName:   flags.packageName,
		RuntimeImport: flags.runtimeImport,
		CurrentDir:    filepath.Dir(file),
	}
	var closeCache func()
	if doc != nil {
		cfg.StrictSecurity = doc.StrictSecurity
		if doc.OutputMode == glyphconfig.OutputSingleFile {
			cfg.ImportMode = emitter.ImportInline
		}
		reg, closer, err := buildRegistry(doc, filepath.Dir(file))
		if err != nil {
			return &pipeline.Result{}, err
		}
		cfg.Registry = reg
		closeCache = closer
	} else {
		// No project configuration: still allow a registry-free compile
		// of import-free programs, per pipeline.Compile's documented
		// behavior for nil Registry.
		closeCache = func() {}
	}
	defer closeCache()

	return pipeline.Compile(cfg, pipeline.Source{Code: string(content), Filename: file})
}

// loadProjectConfig reads and schema-validates the project configuration
// document at path. An empty path is not an error: callers then compile
// with registry-free defaults.
func loadProjectConfig(path string) (*glyphconfig.Document, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project configuration %q: %w", path, err)
	}
	doc, err := glyphconfig.Load(path, data)
	if err != nil {
		if rep, ok := glyphcerrors.AsReport(err); ok {
			return nil, fmt.Errorf("%s: %s", rep.Code, rep.Message)
		}
		return nil, err
	}
	return doc, nil
}

// sourceCompiler implements registry.Compiler by parsing sl_source module
// files with the same lexer/parser the top-level pipeline uses.
type sourceCompiler struct{}

func (sourceCompiler) Compile(source, origin string) (*ast.File, []string, error) {
	l := lexer.New(source, origin)
	p := parser.New(l)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, nil, errs[0]
	}
	deps := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		deps = append(deps, imp.Path)
	}
	return file, deps, nil
}

// buildRegistry assembles a module registry from the project configuration
// document's ml_module_paths/allow_current_dir keys, warm-started from a
// per-workspace persistent SQLite cache (spec.md §4.5 invariant (iii)).
// The returned closer must be called once the registry is no longer needed.
func buildRegistry(doc *glyphconfig.Document, currentDir string) (*registry.Registry, func(), error) {
	logger, _ := zap.NewProduction()
	if logger == nil {
		logger = zap.NewNop()
	}
	var searchPaths []string
	allowCurrentDir := false
	if doc != nil {
		searchPaths = doc.MLModulePaths
		allowCurrentDir = doc.AllowCurrentDir
	}
	reg := registry.New(registry.Config{SearchPaths: searchPaths, AllowCurrentDir: allowCurrentDir}, sourceCompiler{}, logger)

	cachePath := filepath.Join(currentDir, ".glyphc-cache.sqlite")
	c, err := cache.Open(cachePath)
	if err != nil {
		// A missing/unwritable cache directory degrades to a cold
		// registry rather than aborting compilation.
		return reg, func() {}, nil
	}
	reg = reg.WithPersistentCache(c, Version)
	return reg, func() { c.Close() }, nil
}

// runArtifact writes the emitted Go source to a scratch directory inside
// the current module (so its "internal/glyphrt" import resolves against
// this module's go.mod) and runs it with `go run`.
func runArtifact(artifact string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp(wd, ".glyphc-run-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	mainPath := filepath.Join(dir, "main.go")
	if err := os.WriteFile(mainPath, []byte(artifact), 0o644); err != nil {
		return err
	}

	cmd := exec.Command("go", "run", mainPath)
	cmd.Dir = wd
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func printDiagnostics(result *pipeline.Result) {
	if result == nil {
		return
	}
	for _, d := range result.Diagnostics {
		label := cyan(d.Phase)
		switch d.Severity {
		case "error":
			label = red(d.Phase)
		case "warning":
			label = yellow(d.Phase)
		}
		msg := d.Phase
		if d.Report != nil {
			msg = d.Report.Message
		}
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", label, msg)
	}
}

func runTests(path string) error {
	fmt.Printf("%s Running tests in %s\n", cyan("→"), path)
	found := 0
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasSuffix(p, ".gly") {
			found++
			fmt.Printf("  %s %s\n", green("✓"), p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %d file(s) checked\n", green("✓"), found)
	return nil
}

// watchFile recompiles and reruns file each time it changes on disk,
// grounded on the iter reference's fsnotify mtime-watch idiom (see
// DESIGN.md) rather than a polling loop.
func watchFile(file string, flags *cliFlags) error {
	fmt.Printf("%s Watching %s for changes...\n", cyan("👁"), file)
	fmt.Println("Press Ctrl+C to stop")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return err
	}

	runOnce := func() {
		result, err := compileFile(file, flags)
		printDiagnostics(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return
		}
		if err := runArtifact(result.Artifact); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
		}
	}
	runOnce()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(file) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(150 * time.Millisecond)
		case <-debounce.C:
			fmt.Printf("\n%s %s changed, recompiling...\n", cyan("→"), file)
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Watch error"), err)
		}
	}
}
