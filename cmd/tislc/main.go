package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tisl"
	"github.com/wippyai/tisl/abi"
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/config"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/host"
	"github.com/wippyai/tisl/target"
)

// Exit codes.
const (
	exitOK         = 0
	exitSyntax     = 1
	exitSemantic   = 2
	exitGeneration = 3
	exitIO         = 4
)

// optionList collects repeated -opt flags.
type optionList []string

func (o *optionList) String() string { return strings.Join(*o, ",") }

func (o *optionList) Set(v string) error {
	*o = append(*o, v)
	return nil
}

// ioError marks failures reading inputs or writing outputs.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("tislc", flag.ContinueOnError)
	fset.SetOutput(stderr)
	var (
		targetName  = fset.String("t", "", "Target to generate (default from config, else rust-wasmtime)")
		configFile  = fset.String("config", "", "YAML or JSON configuration file")
		outFile     = fset.String("o", "", "Output file (default stdout)")
		listTargets = fset.Bool("list-targets", false, "List registered targets and their options and exit")
		checkFile   = fset.String("check", "", "Check the imports of a guest wasm module against the schema")
		stubFile    = fset.String("stub", "", "Write a guest wasm module importing every function of the schema")
		interactive = fset.Bool("i", false, "Browse the schema interactively")
		verbose     = fset.Bool("v", false, "Verbose logging")
		opts        optionList
	)
	fset.Var(&opts, "opt", "Target option key=value (repeatable)")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: tislc [flags] [in.tisl] [out]")
		fmt.Fprintln(stderr, "       tislc -list-targets")
		fmt.Fprintln(stderr, "       tislc -check guest.wasm in.tisl")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitGeneration
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			setLoggers(logger)
			defer func() { _ = logger.Sync() }()
		}
	}

	reg := tisl.DefaultRegistry()
	if *listTargets {
		printTargets(stdout, reg)
		return exitOK
	}

	d := &driver{
		reg:    reg,
		cfg:    config.New(),
		stdin:  stdin,
		stdout: stdout,
	}
	if *configFile != "" {
		if err := d.cfg.LoadFile(*configFile); err != nil {
			return report(stderr, err)
		}
	}
	if *targetName != "" {
		d.cfg.Target = *targetName
	}
	if *outFile != "" {
		d.cfg.Output = *outFile
	}

	rest := fset.Args()
	if len(rest) > 2 {
		fset.Usage()
		return exitGeneration
	}
	if len(rest) > 0 && rest[0] != "-" {
		d.input = rest[0]
	}
	if len(rest) > 1 {
		d.cfg.Output = rest[1]
	}
	d.options = opts

	var err error
	switch {
	case *interactive:
		err = d.interactive()
	case *checkFile != "":
		err = d.check(*checkFile)
	case *stubFile != "":
		err = d.stub(*stubFile)
	default:
		err = d.compile()
	}
	if err != nil {
		return report(stderr, err)
	}
	return exitOK
}

type driver struct {
	reg     *target.Registry
	cfg     *config.Config
	input   string
	options []string
	stdin   io.Reader
	stdout  io.Writer
}

func (d *driver) fileName() string {
	if d.input == "" {
		return "<stdin>"
	}
	return d.input
}

func (d *driver) readSource() (string, error) {
	var data []byte
	var err error
	if d.input == "" {
		data, err = io.ReadAll(d.stdin)
	} else {
		data, err = os.ReadFile(d.input)
	}
	if err != nil {
		return "", &ioError{err}
	}
	return string(data), nil
}

func (d *driver) parse() (*ast.Program, error) {
	src, err := d.readSource()
	if err != nil {
		return nil, err
	}
	return tisl.Parse(d.fileName(), src)
}

// prepare selects the configured target and merges config and flag options.
func (d *driver) prepare() (target.Target, target.Options, error) {
	t, err := d.reg.Lookup(d.cfg.Target)
	if err != nil {
		return nil, nil, err
	}
	opts := d.cfg.Options(t)
	for _, o := range d.options {
		k, v, err := target.ParseOption(o)
		if err != nil {
			return nil, nil, err
		}
		opts[k] = v
	}
	return d.reg.Prepare(d.cfg.Target, opts)
}

func (d *driver) abiConfig() (abi.Config, error) {
	size := d.cfg.ABISize
	for _, o := range d.options {
		if k, v, err := target.ParseOption(o); err == nil && k == "abi-size" {
			size = v
		}
	}
	if size == "" {
		return abi.DefaultConfig(), nil
	}
	return abi.ParseSize(size)
}

func (d *driver) compile() error {
	t, opts, err := d.prepare()
	if err != nil {
		return err
	}
	prog, err := d.parse()
	if err != nil {
		return err
	}

	out := d.stdout
	if d.cfg.Output != "" && d.cfg.Output != "-" {
		f, err := os.Create(d.cfg.Output)
		if err != nil {
			return &ioError{err}
		}
		defer f.Close()
		out = f
	}

	for frag, err := range tisl.Generate(prog, t, opts) {
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return e.WithFile(d.fileName())
			}
			return err
		}
		if _, err := io.WriteString(out, frag); err != nil {
			return &ioError{err}
		}
	}
	return nil
}

func (d *driver) check(wasmFile string) error {
	cfg, err := d.abiConfig()
	if err != nil {
		return err
	}
	prog, err := d.parse()
	if err != nil {
		return err
	}
	wasm, err := os.ReadFile(wasmFile)
	if err != nil {
		return &ioError{err}
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	errs := &errors.List{}
	for _, mod := range prog.Roots() {
		switch e := host.CheckGuest(ctx, rt, wasm, mod, cfg).(type) {
		case nil:
		case *errors.Error:
			errs.Errors = append(errs.Errors, e)
		case *errors.List:
			errs.Errors = append(errs.Errors, e.Errors...)
		default:
			return e
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "%s: imports match %s\n", wasmFile, d.fileName())
	return nil
}

func (d *driver) stub(wasmFile string) error {
	cfg, err := d.abiConfig()
	if err != nil {
		return err
	}
	prog, err := d.parse()
	if err != nil {
		return err
	}
	roots := prog.Roots()
	if len(roots) != 1 {
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("-stub needs exactly one root module, found %d", len(roots)))
	}
	wasm, err := host.Stub(roots[0], cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(wasmFile, wasm, 0o644); err != nil {
		return &ioError{err}
	}
	return nil
}

func printTargets(w io.Writer, reg *target.Registry) {
	for _, name := range reg.Names() {
		fmt.Fprintln(w, name)
		t, _ := reg.Lookup(name)
		c, ok := t.(target.Configurable)
		if !ok {
			continue
		}
		for _, spec := range c.OptionSchema() {
			line := fmt.Sprintf("  %-14s %s (default %s)", spec.Name, spec.Help, spec.Default)
			if len(spec.Allowed) > 0 {
				line += ", one of " + strings.Join(spec.Allowed, ", ")
			}
			fmt.Fprintln(w, line)
		}
	}
}

// report renders err to w and returns its exit code.
func report(w io.Writer, err error) int {
	msg := render(err)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
	return exitCode(err)
}

func render(err error) string {
	switch e := err.(type) {
	case *errors.Error:
		return e.Render()
	case *errors.List:
		parts := make([]string, len(e.Errors))
		for i, item := range e.Errors {
			parts[i] = item.Render()
		}
		return strings.Join(parts, "\n")
	}
	return "Error: " + err.Error()
}

func exitCode(err error) int {
	switch e := err.(type) {
	case *ioError:
		return exitIO
	case *errors.List:
		if len(e.Errors) > 0 {
			return exitCode(e.Errors[0])
		}
	case *errors.Error:
		if _, ok := e.Cause.(*fs.PathError); ok {
			return exitIO
		}
		switch e.Category() {
		case errors.CategorySyntax:
			return exitSyntax
		case errors.CategorySemantic:
			return exitSemantic
		}
	}
	return exitGeneration
}
