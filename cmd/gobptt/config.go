package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/kkoreilly/gobptt"
	"github.com/kkoreilly/gobptt/rnn"
	"github.com/sirupsen/logrus"
)

// Config holds the command line options
type Config struct {
	Mode            string  // "ff" or "rnn"
	Iterations      int     // training examples (ff) or sequences (rnn)
	LearningRate    float64 // learning rate for every update
	Seed            uint64  // seed for initialization and training data
	Hidden          string  // comma separated hidden layer sizes (ff)
	Activation      string  // hidden layer activation (ff)
	StateActivation string  // recurrent tree activation (rnn)
	StateGradient   string  // output tree gradient feeding earlier tree gradients: same or next (rnn)
	StateSize       int     // recurrent state size (rnn)
	Lookback        int     // how many steps back the target is taken from (rnn)
	SeqLen          int     // sequence length (rnn)
	Explode         float64 // cost above which training is aborted
	LogEvery        int     // iterations between progress logs, 0 to disable
	LogLevel        string  // logrus level name
	Vectorized      bool    // use the data-parallel kernels
	REPL            bool    // read inputs from stdin after training (ff)
}

func defaultConfig() *Config {
	return &Config{
		Mode:            "ff",
		Iterations:      2_000_000,
		LearningRate:    0.1,
		Seed:            1,
		Hidden:          "10,10",
		Activation:      gobptt.KindTanh.String(),
		StateActivation: gobptt.KindIdentity.String(),
		StateGradient:   rnn.NextStep.String(),
		StateSize:       4,
		Lookback:        1,
		SeqLen:          3,
		Explode:         100_000,
		LogEvery:        100_000,
		LogLevel:        "info",
	}
}

func (c *Config) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Mode, "mode", c.Mode, "what to train: ff (feedforward classifier) or rnn (lookback reproduction)")
	fs.IntVar(&c.Iterations, "iterations", c.Iterations, "number of training examples or sequences")
	fs.Float64Var(&c.LearningRate, "lr", c.LearningRate, "learning rate")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed")
	fs.StringVar(&c.Hidden, "hidden", c.Hidden, "comma separated hidden layer sizes for ff")
	fs.StringVar(&c.Activation, "activation", c.Activation, "hidden layer activation for ff")
	fs.StringVar(&c.StateActivation, "state-activation", c.StateActivation, "recurrent tree activation for rnn")
	fs.StringVar(&c.StateGradient, "state-gradient", c.StateGradient, "output tree gradient step used for earlier tree gradients in rnn: same or next")
	fs.IntVar(&c.StateSize, "state", c.StateSize, "recurrent state size for rnn")
	fs.IntVar(&c.Lookback, "lookback", c.Lookback, "steps back the rnn target is taken from")
	fs.IntVar(&c.SeqLen, "seq-len", c.SeqLen, "rnn sequence length")
	fs.Float64Var(&c.Explode, "explode", c.Explode, "abort when the cost goes above this")
	fs.IntVar(&c.LogEvery, "log-every", c.LogEvery, "iterations between progress logs (0 disables)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.Vectorized, "vectorized", c.Vectorized, "use the data-parallel kernels")
	fs.BoolVar(&c.REPL, "repl", c.REPL, "after ff training, read two inputs per line from stdin and print the outputs")
}

// Validate checks the options for consistency
func (c *Config) Validate() error {
	switch c.Mode {
	case "ff":
		if _, err := c.hiddenSizes(); err != nil {
			return err
		}
		if _, err := gobptt.ActivationByName(c.Activation); err != nil {
			return fmt.Errorf("-activation: %w", err)
		}
	case "rnn":
		if c.StateSize < 1 {
			return fmt.Errorf("-state must be at least 1, got %d", c.StateSize)
		}
		if c.Lookback < 0 || c.Lookback >= c.SeqLen {
			return fmt.Errorf("-lookback must be in [0, %d), got %d", c.SeqLen, c.Lookback)
		}
		if _, err := gobptt.ActivationByName(c.StateActivation); err != nil {
			return fmt.Errorf("-state-activation: %w", err)
		}
		if _, err := rnn.ParseGradientStep(c.StateGradient); err != nil {
			return fmt.Errorf("-state-gradient: %w", err)
		}
	default:
		return fmt.Errorf("unknown -mode %q (want ff or rnn)", c.Mode)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("-iterations must not be negative, got %d", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("-lr must be positive, got %g", c.LearningRate)
	}
	if c.Explode <= 0 {
		return fmt.Errorf("-explode must be positive, got %g", c.Explode)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("-log-every must not be negative, got %d", c.LogEvery)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("-log-level: %w", err)
	}
	return nil
}

// hiddenSizes parses Hidden. An empty string means no hidden layers.
func (c *Config) hiddenSizes() ([]int, error) {
	if strings.TrimSpace(c.Hidden) == "" {
		return nil, nil
	}
	parts := strings.Split(c.Hidden, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("-hidden: layer %d: %w", i, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("-hidden: layer %d: size must be at least 1, got %d", i, n)
		}
		sizes[i] = n
	}
	return sizes, nil
}
