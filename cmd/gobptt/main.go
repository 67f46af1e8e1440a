// Command gobptt trains the example networks: a feedforward classifier of
// points in the plane, or a recurrent network that reproduces the input seen a
// few steps earlier.
//
// Usage:
//
//	gobptt -mode ff -iterations 2000000 -repl
//	gobptt -mode rnn -lookback 2 -state 2 -lr 0.05 -iterations 5000
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"
)

var errCostExplosion = errors.New("cost explosion")

func main() {
	cfg := defaultConfig()
	cfg.registerFlags(flag.CommandLine)
	flag.Parse()

	log := logrus.New()
	if err := run(cfg, os.Stdin, os.Stdout, log); err != nil {
		log.WithError(err).Fatal("gobptt failed")
	}
}

// run trains the network selected by cfg. In ff mode with REPL set, it then
// answers queries read from in, writing the outputs to out.
func run(cfg *Config, in io.Reader, out io.Writer, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("-log-level: %w", err)
	}
	log.SetLevel(level)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	switch cfg.Mode {
	case "rnn":
		_, err := trainRecurrent(cfg, rng, log)
		return err
	default:
		n, err := trainFeedforward(cfg, rng, log)
		if err != nil {
			return err
		}
		if cfg.REPL {
			return repl(n, in, out, log)
		}
		return nil
	}
}
