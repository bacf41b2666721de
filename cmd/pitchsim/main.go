package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Debug bool `help:"Whether to enable debug logging."`

	Bench BenchCmd `cmd:"" default:"1" help:"Run simulation benchmarks."`
}

type BenchCmd struct {
	Readme  bool `help:"Run the standard benchmark: 2v2 soccar, 1M ticks at 120 Hz."`
	Profile bool `help:"Report per-phase timing."`

	Threads int   `default:"1" help:"Number of parallel arenas."`
	Seed    int64 `default:"42" help:"Kickoff RNG seed."`
	Ticks   int   `default:"100000" help:"Ticks to simulate (ignored with --readme)."`

	Meshes string `type:"path" help:"Collision geometry root directory."`
	Config string `type:"existingfile" help:"YAML mutator config overrides."`
	Record string `type:"path" help:"Record a replay to this file."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("pitchsim"),
		kong.Description("a deterministic car-soccer simulation engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	switch ctx.Command() {
	case "bench":
		if err := CLI.Bench.Run(); err != nil {
			writeError(err)
		}
	}
}
