// edn reads EDN documents and prints, validates, canonicalizes,
// fingerprints or converts them.
//
// Usage:
//
//	edn [flags] [file...]
//
// With no file, or a file named "-", standard input is read. By default
// every input must hold exactly one form; --all accepts any number.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	edn "github.com/KimNorgaard/go-edn"
	"github.com/KimNorgaard/go-edn/codec"
	"github.com/KimNorgaard/go-edn/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "edn: %v\n", err)
		os.Exit(2)
	}
}

// exitError ends the program with code after the failures have already
// been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }

type mode int

const (
	modePrint mode = iota
	modeCheck
	modeCanonical
	modeCBOR
	modeDiag
	modeFingerprint
)

type command struct {
	mode   mode
	all    bool
	indent string
	opts   []edn.Option
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		check, canonical, cborOut, diag, fingerprint bool
		all, verbose                                 bool
		configPath, fallback                         string
		indent                                       int
	)
	flagSet := pflag.NewFlagSet("edn", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&check, "check", false, "only validate the input")
	flagSet.BoolVar(&canonical, "canonical", false, "print the canonical form (sorted sets and maps)")
	flagSet.BoolVar(&cborOut, "cbor", false, "write CBOR to standard output")
	flagSet.BoolVar(&diag, "diag", false, "print the CBOR encoding in diagnostic notation")
	flagSet.BoolVar(&fingerprint, "fingerprint", false, "print the BLAKE3 fingerprint of each form")
	flagSet.IntVar(&indent, "indent", 0, "break long collections over lines indented by this many spaces")
	flagSet.BoolVar(&all, "all", false, "accept any number of top-level forms")
	flagSet.StringVar(&configPath, "config", "", "reader configuration file (default $"+config.EnvVar+")")
	flagSet.StringVar(&fallback, "fallback", "", "handling of unknown tags: passthrough, unwrap or error")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug information")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: edn [flags] [file...]\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if indent < 0 {
		return errors.New("--indent must not be negative")
	}
	c := &command{all: all, indent: strings.Repeat(" ", indent), stdout: stdout, stderr: stderr, logger: logger}
	selected := 0
	for _, m := range []struct {
		set  bool
		mode mode
	}{
		{check, modeCheck},
		{canonical, modeCanonical},
		{cborOut, modeCBOR},
		{diag, modeDiag},
		{fingerprint, modeFingerprint},
	} {
		if m.set {
			c.mode = m.mode
			selected++
		}
	}
	if selected > 1 {
		return errors.New("--check, --canonical, --cbor, --diag and --fingerprint are mutually exclusive")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if fallback != "" {
		cfg.Fallback = fallback
	}
	if c.opts, err = cfg.Options(); err != nil {
		return err
	}
	logger.Debug("configuration loaded", "fallback", cfg.Fallback, "max_depth", cfg.MaxDepth,
		"max_arena_bytes", cfg.MaxArenaBytes, "builtin_readers", cfg.BuiltinReaders)

	files := flagSet.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}
	failed := 0
	for _, name := range files {
		if err := c.process(name, stdin); err != nil {
			failed++
			c.report(name, err)
		}
	}
	if failed > 0 {
		logger.Debug("inputs failed", "failed", failed, "total", len(files))
		return &exitError{code: 1}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func (c *command) process(name string, stdin io.Reader) error {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return err
	}

	read := edn.Read
	if c.all {
		read = edn.ReadAll
	}
	doc, err := read(data, c.opts...)
	if err != nil {
		return err
	}
	defer doc.Release()
	forms := doc.Forms()
	var used int
	if a := doc.Arena(); a != nil {
		used = a.Used()
	}
	c.logger.Debug("read input", "file", name, "bytes", len(data), "forms", len(forms), "arena_bytes", used)

	return c.output(name, forms)
}

func (c *command) output(name string, forms []edn.Value) error {
	switch c.mode {
	case modeCheck:
		return nil
	case modeCBOR, modeDiag:
		data, err := codec.MarshalAll(forms)
		if err != nil {
			return err
		}
		if c.mode == modeCBOR {
			_, err = c.stdout.Write(data)
			return err
		}
		text, err := codec.Diagnose(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, text)
		return err
	}

	var out []byte
	for _, v := range forms {
		switch c.mode {
		case modeCanonical:
			out = append(out, edn.CanonicalIndent(v, c.indent)...)
		case modeFingerprint:
			sum := edn.Fingerprint(v)
			out = hex.AppendEncode(out, sum[:])
			out = append(out, "  "...)
			out = append(out, name...)
		default:
			out = edn.AppendIndent(out, v, c.indent)
		}
		out = append(out, '\n')
	}
	_, err := c.stdout.Write(out)
	return err
}

// report prints a failure as file:line:column: message.
func (c *command) report(name string, err error) {
	var e *edn.Error
	if errors.As(err, &e) && e.Line > 0 {
		fmt.Fprintf(c.stderr, "%s:%d:%d: %s\n", name, e.Line, e.Column, e.Message)
		c.logger.Debug("read failed", "file", name, "code", e.Code.String(), "offset", e.Offset)
		return
	}
	fmt.Fprintf(c.stderr, "%s: %v\n", name, err)
}
