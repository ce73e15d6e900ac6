package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/serialforce/internal/config"
	"github.com/danmuck/serialforce/internal/document"
	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/inspect"
	"github.com/danmuck/serialforce/internal/logging"
	"github.com/danmuck/serialforce/internal/object"
	"github.com/danmuck/serialforce/internal/observability"
	"github.com/danmuck/serialforce/internal/server"
	"github.com/rs/zerolog/log"
)

const usage = `usage: sfctl <command> [flags]

commands:
  encode   encode a TOML document into an envelope
  wrap     wrap a file as a ByteBuffer or Text envelope
  inspect  print the envelope tree as JSON or CBOR
  get      print the value at a dotted path
  verify   check framing and integrity
  serve    run the HTTP inspector
  config   write a starter sfctl.toml
`

// errInvalid marks an envelope that failed verification; it maps to exit 2.
var errInvalid = errors.New("envelope invalid")

func run(args []string, stdout, stderr io.Writer) int {
	logging.ConfigureRuntime()
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var err error
	switch args[0] {
	case "encode":
		err = runEncode(args[1:], stderr)
	case "wrap":
		err = runWrap(args[1:], stderr)
	case "inspect":
		err = runInspect(args[1:], stdout, stderr)
	case "get":
		err = runGet(args[1:], stdout, stderr)
	case "verify":
		err = runVerify(args[1:], stdout, stderr)
	case "serve":
		err = runServe(args[1:], stderr)
	case "config":
		err = runConfig(args[1:], stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "sfctl: unknown command %q\n%s", args[0], usage)
		return 1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errInvalid):
		fmt.Fprintf(stderr, "sfctl %s: %v\n", args[0], err)
		return 2
	default:
		fmt.Fprintf(stderr, "sfctl %s: %v\n", args[0], err)
		return 1
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// loadConfig returns defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	logging.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func readEnvelope(path string, limits envelope.Limits) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("-in is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := limits.Check(int(info.Size())); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("-out is required")
	}
	return os.WriteFile(path, data, 0o644)
}

func runEncode(args []string, stderr io.Writer) error {
	fs := newFlagSet("encode", stderr)
	in := fs.String("in", "", "TOML document to encode")
	out := fs.String("out", "", "envelope output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}
	d, err := document.ParseFile(*in)
	if err != nil {
		return err
	}
	data := object.Marshal(d)
	if err := writeOutput(*out, data); err != nil {
		return err
	}
	log.Info().Str("in", *in).Str("out", *out).Int("keys", d.Len()).Int("bytes", len(data)).Msg("encoded document")
	return nil
}

func runWrap(args []string, stderr io.Writer) error {
	fs := newFlagSet("wrap", stderr)
	kind := fs.String("type", object.NameByteBuffer, "variant: ByteBuffer|Text")
	in := fs.String("in", "", "input file")
	out := fs.String("out", "", "envelope output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}
	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	var v object.Value
	switch *kind {
	case object.NameByteBuffer:
		v = object.NewByteBuffer(raw)
	case object.NameText:
		v = &object.Text{Value: string(raw)}
	default:
		return fmt.Errorf("unsupported -type %q", *kind)
	}
	data := object.Marshal(v)
	if err := writeOutput(*out, data); err != nil {
		return err
	}
	log.Info().Str("type", *kind).Str("out", *out).Int("bytes", len(data)).Msg("wrapped file")
	return nil
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	in := fs.String("in", "", "envelope file")
	formatFlag := fs.String("format", "json", "output format: json|cbor")
	cfgPath := fs.String("config", "", "sfctl.toml path")
	depth := fs.Int("depth", inspect.DefaultMaxDepth, "maximum container depth")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := inspect.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	data, err := readEnvelope(*in, cfg.Limits())
	if err != nil {
		return err
	}
	node := inspect.Inspect(data, cfg.Resolver(), inspect.Options{MaxDepth: *depth})
	stats := inspect.Count(node)
	observability.RecordEnvelope("cli", "inspect", observability.EnvelopeResult(stats.Invalid, stats.Unknown), len(data))
	log.Debug().Int("nodes", stats.Nodes).Int("unknown", stats.Unknown).Int("invalid", stats.Invalid).Msg("inspected")
	return inspect.Write(stdout, node, format)
}

func runGet(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("get", stderr)
	in := fs.String("in", "", "envelope file")
	path := fs.String("path", "", `dotted key/index path, e.g. owner.tags.0 (\. for a literal dot)`)
	cfgPath := fs.String("config", "", "sfctl.toml path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	data, err := readEnvelope(*in, cfg.Limits())
	if err != nil {
		return err
	}
	r := cfg.Resolver()
	raw, err := inspect.Lookup(data, *path, r)
	if err != nil {
		return err
	}
	return inspect.Write(stdout, inspect.Inspect(raw, r, inspect.Options{}), inspect.FormatJSON)
}

func runVerify(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("verify", stderr)
	in := fs.String("in", "", "envelope file")
	cfgPath := fs.String("config", "", "sfctl.toml path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	data, err := readEnvelope(*in, cfg.Limits())
	if err != nil {
		return err
	}
	h, err := envelope.Verify(data)
	if err != nil {
		observability.RecordEnvelope("cli", "verify", observability.ResultInvalid, len(data))
		return fmt.Errorf("%w: %v", errInvalid, err)
	}
	name := cfg.Resolver().Resolve(data)
	if name == "" {
		name = "<unknown>"
	}
	observability.RecordEnvelope("cli", "verify", observability.ResultOK, len(data))
	fmt.Fprintf(stdout, "ok type=%s payload=%d token=%s\n", name, h.PayloadLen, h.Type)
	return nil
}

func runServe(args []string, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	cfgPath := fs.String("config", "", "sfctl.toml path")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg).Run(ctx)
}

func runConfig(args []string, stderr io.Writer) error {
	fs := newFlagSet("config", stderr)
	output := fs.String("output", "sfctl.toml", "output path for config template")
	force := fs.Bool("force", false, "overwrite existing config file")
	validate := fs.String("validate", "", "validate an existing config file instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *validate != "" {
		if _, err := config.Load(*validate); err != nil {
			return err
		}
		log.Info().Str("path", *validate).Msg("validated config")
		return nil
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	log.Info().Str("path", *output).Msg("wrote config template")
	return nil
}
