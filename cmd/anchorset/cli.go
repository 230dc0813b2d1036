package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/anchorset/anchor"
	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/latency"
)

// version is set at link time.
var version = "dev"

// streams carries the process I/O so commands can be run against buffers.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type CLI struct {
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"ANCHORSET_LOG_FORMAT" help:"Log output format (${enum})"`
	LogLevel  string `name:"log-level" default:"info" env:"ANCHORSET_LOG_LEVEL" help:"Minimum log level (debug, info, warn, error)"`

	Reduce  reduceCmd  `cmd:"" help:"Remove the anchors that contribute least to the latency hypervolume"`
	Version versionCmd `cmd:"" help:"Show version"`
}

// AfterApply sets up the logger and binds it for the selected command.
func (cli *CLI) AfterApply(kctx *kong.Context, s *streams) error {
	log, err := diag.NewLoggerTo(s.err, cli.LogFormat, cli.LogLevel)
	if err != nil {
		return err
	}
	kctx.Bind(log)
	return nil
}

func newParser(ctx context.Context, cli *CLI, s *streams, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("anchorset"),
		kong.Description("Select well-spread anchor nodes from pairwise latency measurements"),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(s),
		kong.Writers(s.out, s.err),
		kong.ConfigureHelp(kong.HelpOptions{
			Tree: true,
		}),
		kong.UsageOnError(),
	}, opts...)

	return kong.New(cli, opts...)
}

type reduceCmd struct {
	Remove  int      `short:"n" required:"" env:"ANCHORSET_REMOVE" help:"Number of anchors to remove from each input"`
	Config  string   `short:"c" type:"path" env:"ANCHORSET_CONFIG" help:"YAML service config (parallelism, tolerance)"`
	Metrics bool     `env:"ANCHORSET_METRICS" help:"Write Prometheus metrics to stderr when done"`
	Inputs  []string `arg:"" name:"input" help:"Latency files; '-' reads stdin"`
}

// output is one YAML document written per input.
type output struct {
	Input           string `yaml:"input"`
	anchor.Response `yaml:",inline"`
}

func (cmd *reduceCmd) Run(ctx context.Context, log *slog.Logger, s *streams) error {
	cfg := anchor.DefaultConfig()
	if cmd.Config != "" {
		var err error
		if cfg, err = anchor.LoadConfigFile(cmd.Config); err != nil {
			return fmt.Errorf("config %s: %w", cmd.Config, err)
		}
	}

	reqs := make([]anchor.Request, 0, len(cmd.Inputs))
	for _, in := range cmd.Inputs {
		cands, tbl, err := cmd.load(in, s)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		log.Debug("loaded measurements", "input", in, "nodes", cands.Len(), "measurements", tbl.Len())
		reqs = append(reqs, anchor.Request{Candidates: cands, Table: tbl, Remove: cmd.Remove})
	}

	sinks := []diag.Sink{diag.NewSlogSink(log)}
	reg := prometheus.NewRegistry()
	if cmd.Metrics {
		sinks = append(sinks, diag.NewMetrics(reg))
	}
	svc, err := anchor.New(cfg, anchor.WithSink(diag.NewMulti(sinks...)))
	if err != nil {
		return err
	}

	resps, err := svc.SelectMany(diag.NewContext(ctx, log), reqs)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(s.out)
	enc.SetIndent(2)
	for i, resp := range resps {
		if err := enc.Encode(output{Input: cmd.Inputs[i], Response: resp}); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if cmd.Metrics {
		return diag.WriteText(s.err, reg)
	}
	return nil
}

func (cmd *reduceCmd) load(name string, s *streams) (*latency.CandidateSet, *latency.Table, error) {
	if name == "-" {
		return latency.Decode(s.in)
	}
	return latency.ReadFile(name)
}

type versionCmd struct{}

func (cmd *versionCmd) Run(s *streams) error {
	_, err := fmt.Fprintf(s.out, "anchorset %s\n", version)
	return err
}
