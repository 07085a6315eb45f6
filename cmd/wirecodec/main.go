// wirecodec decodes documents against a schema and re-encodes them.
//
//	wirecodec decode --ir model.json --type Event [--mode strict] [--in json] [--out cbor] < in > out
//	wirecodec transcode --in yaml --out json < in > out
//
// decode prints one line per problem, "code at path: message", and exits 1
// when the input does not match the type.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/dynamic"
	"github.com/reoring/wirecodec/i18n"
	"github.com/reoring/wirecodec/schema"
	"github.com/reoring/wirecodec/schema/ir"
	"github.com/reoring/wirecodec/source/bson"
	"github.com/reoring/wirecodec/source/cbor"
	"github.com/reoring/wirecodec/source/json"
	"github.com/reoring/wirecodec/source/jsontext"
	"github.com/reoring/wirecodec/source/msgpack"
	"github.com/reoring/wirecodec/source/yaml"
)

var formats = map[string]wc.Format{}

func init() {
	for _, f := range []wc.Format{json.Format, jsontext.Format, yaml.Format, cbor.Format, msgpack.Format, bson.Format} {
		formats[f.Name()] = f
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func usageError(format string, a ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, a...)}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "decode":
		err = decodeCmd(args[1:], stdin, stdout, stderr)
	case "transcode":
		err = transcodeCmd(args[1:], stdin, stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
	if err == nil {
		return 0
	}
	var issues wc.Issues
	if errors.As(err, &issues) {
		printIssues(stderr, issues)
		return 1
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintf(stderr, "error: %v\n", ee.err)
		return ee.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `wirecodec decodes documents against a schema and re-encodes them.

Usage:
  wirecodec decode --ir FILE --type NAME [flags] < input > output
  wirecodec transcode --in FORMAT --out FORMAT [flags] < input > output

Formats: %s
Run a command with --help for its flags.
`, strings.Join(formatNames(), ", "))
}

func formatNames() []string {
	names := make([]string, 0, len(formats))
	for n := range formats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupFormat(name string) (wc.Format, error) {
	f, ok := formats[name]
	if !ok {
		return nil, usageError("unknown format %q (known: %s)", name, strings.Join(formatNames(), ", "))
	}
	return f, nil
}

// common holds the flags shared by every command.
type common struct {
	in, out       string
	mode          string
	maxDepth      int
	maxBytes      int64
	duplicateKeys string
	lang          string
	verbose       bool
}

func (c *common) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.in, "in", "json", "input format")
	fs.StringVar(&c.out, "out", "json", "output format")
	fs.StringVar(&c.mode, "mode", "strict", "decode mode: strict|lenient")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fs.Int64Var(&c.maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fs.StringVar(&c.duplicateKeys, "duplicate-keys", "error", "duplicate map keys: ignore|warn|error")
	fs.StringVar(&c.lang, "lang", "en", "language of issue messages: en|ja")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "log progress to stderr")
}

func (c *common) options(logger *slog.Logger) (wc.DecodeOpt, error) {
	mode, err := wc.ParseDecodeMode(c.mode)
	if err != nil {
		return wc.DecodeOpt{}, usageError("--mode: %v", err)
	}
	dup, err := wc.ParseSeverity(c.duplicateKeys)
	if err != nil {
		return wc.DecodeOpt{}, usageError("--duplicate-keys: %v", err)
	}
	i18n.SetLanguage(c.lang)
	return wc.DecodeOpt{
		Mode:           mode,
		MaxDepth:       c.maxDepth,
		MaxBytes:       c.maxBytes,
		OnDuplicateKey: dup,
		OnWarning: func(is wc.Issue) {
			logger.Warn(is.Message, "code", is.Code, "path", is.Path)
		},
	}, nil
}

func (c *common) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func parseFlags(fs *pflag.FlagSet, args []string, stdout io.Writer) (bool, error) {
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, usageError("%v", err)
	}
	if fs.NArg() > 0 {
		return false, usageError("unexpected argument: %s", fs.Arg(0))
	}
	return false, nil
}

func decodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c common
	var irPath, irFormat, typeName string
	var openUnions bool
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	c.addFlags(fs)
	fs.StringVar(&irPath, "ir", "", "schema IR document")
	fs.StringVar(&irFormat, "ir-format", "", "format of the IR document (default: from the file extension)")
	fs.StringVar(&typeName, "type", "", "name of the type to decode")
	fs.BoolVar(&openUnions, "open-unions", true, "retain unrecognized union variants and enum values")
	if help, err := parseFlags(fs, args, stdout); help || err != nil {
		return err
	}
	if irPath == "" || typeName == "" {
		return usageError("decode needs --ir and --type")
	}
	logger := c.logger(stderr)
	opt, err := c.options(logger)
	if err != nil {
		return err
	}
	in, err := lookupFormat(c.in)
	if err != nil {
		return err
	}
	out, err := lookupFormat(c.out)
	if err != nil {
		return err
	}

	model, err := loadModel(irPath, irFormat, opt)
	if err != nil {
		return err
	}
	logger.Debug("model loaded", "path", irPath, "types", len(model.Definitions()))
	if _, ok := model.Lookup(typeName); !ok {
		return usageError("type %q is not defined in %s", typeName, irPath)
	}

	codec := dynamic.New(model, dynamic.Options{
		Exhaustive: !openUnions,
		OnUnknownVariant: func(union, catchAll, tag string) {
			logger.Info("retained unknown variant", "union", union, "as", catchAll, "type", tag)
		},
	})
	v := codec.NewValue(&schema.Reference{Name: typeName})
	if err := wc.UnmarshalFrom(in, stdin, opt, v); err != nil {
		return wc.ToIssues(err)
	}
	logger.Debug("decoded", "type", typeName, "mode", opt.Mode, "in", in.Name())
	return write(out, v, stdout)
}

func loadModel(path, format string, opt wc.DecodeOpt) (*schema.Model, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	f, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	d, err := f.NewDecoder(file, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := ir.Load(d, opt.Mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if e, ok := d.(wc.Ender); ok {
		if err := e.End(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return m, nil
}

func transcodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c common
	fs := pflag.NewFlagSet("transcode", pflag.ContinueOnError)
	c.addFlags(fs)
	if help, err := parseFlags(fs, args, stdout); help || err != nil {
		return err
	}
	logger := c.logger(stderr)
	opt, err := c.options(logger)
	if err != nil {
		return err
	}
	in, err := lookupFormat(c.in)
	if err != nil {
		return err
	}
	out, err := lookupFormat(c.out)
	if err != nil {
		return err
	}
	var v wc.AnyValue
	if err := wc.UnmarshalFrom(in, stdin, opt, &v); err != nil {
		return wc.ToIssues(err)
	}
	return write(out, v, stdout)
}

func write(f wc.Format, v any, w io.Writer) error {
	data, err := wc.Marshal(f, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

func printIssues(w io.Writer, issues wc.Issues) {
	for _, is := range issues {
		msg := is.Message
		if is.Hint != "" && is.Hint != msg {
			msg += " (" + is.Hint + ")"
		}
		fmt.Fprintf(w, "%s at %s: %s\n", is.Code, is.Path, msg)
	}
}
