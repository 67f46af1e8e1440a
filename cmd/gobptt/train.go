package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/kkoreilly/gobptt"
	"github.com/kkoreilly/gobptt/rnn"
	"github.com/sirupsen/logrus"
)

// classify is the feedforward target: 1 for points right of x1 = 0.5 or above the diagonal
func classify(x1, x2 float32) float32 {
	if x1 > 0.5 || x2 > x1 {
		return 1
	}
	return 0
}

// checkCost returns an error wrapping errCostExplosion if cost is NaN or above limit
func checkCost(cost float32, limit float64, iteration int) error {
	if math.IsNaN(float64(cost)) || float64(cost) > limit {
		return fmt.Errorf("iteration %d: %w: cost %g", iteration, errCostExplosion, cost)
	}
	return nil
}

// progress accumulates costs between progress logs
type progress struct {
	log   *logrus.Logger
	every int
	sum   float64
	count int
}

func (p *progress) add(iteration int, cost float32) {
	p.sum += float64(cost)
	p.count++
	if p.every == 0 || (iteration+1)%p.every != 0 {
		return
	}
	p.log.WithFields(logrus.Fields{
		"iteration": iteration + 1,
		"meanCost":  p.sum / float64(p.count),
	}).Info("training")
	p.sum, p.count = 0, 0
}

func trainFeedforward(cfg *Config, rng *rand.Rand, log *logrus.Logger) (*gobptt.Network, error) {
	sizes, err := cfg.hiddenSizes()
	if err != nil {
		return nil, err
	}
	act, err := gobptt.ActivationByName(cfg.Activation)
	if err != nil {
		return nil, err
	}
	hidden := make([]gobptt.LayerDef, len(sizes))
	for i, s := range sizes {
		hidden[i] = gobptt.LayerDef{
			NeuronCount: s,
			Activation:  act,
			InitWeights: gobptt.UniformWeights(rng, -1, 1),
			Vectorized:  cfg.Vectorized,
		}
	}
	n := gobptt.NewNetwork(2, hidden, gobptt.OutputDef{
		NeuronCount: 1,
		Activation:  gobptt.Identity,
		Cost:        gobptt.MeanSquaredError,
		InitWeights: gobptt.UniformWeights(rng, -1, 1),
		Vectorized:  cfg.Vectorized,
	}, float32(cfg.LearningRate))

	log.WithFields(logrus.Fields{
		"hidden":     sizes,
		"activation": act.Kind,
		"iterations": cfg.Iterations,
	}).Info("training feedforward network")

	p := &progress{log: log, every: cfg.LogEvery}
	example, expected := make([]float32, 2), make([]float32, 1)
	for i := range cfg.Iterations {
		example[0], example[1] = rng.Float32()*2 - 1, rng.Float32()*2 - 1
		expected[0] = classify(example[0], example[1])
		cost := n.Train(example, expected)
		if err := checkCost(cost, cfg.Explode, i); err != nil {
			if len(n.HiddenLayers) > 0 {
				log.WithFields(logrus.Fields{
					"hiddenWeights": n.HiddenLayers[0].Weights,
					"hiddenBiases":  n.HiddenLayers[0].Biases,
				}).Error("diverged")
			}
			return nil, err
		}
		p.add(i, cost)
	}

	if len(n.HiddenLayers) > 0 {
		log.WithFields(logrus.Fields{
			"hiddenWeights": n.HiddenLayers[0].Weights,
			"hiddenBiases":  n.HiddenLayers[0].Biases,
			"outputWeights": n.Output.Weights,
		}).Debug("trained")
	}
	return n, nil
}

// repl reads two inputs per line from in and writes the network's outputs to
// out until EOF or a line reading "exit". Lines without exactly two fields are skipped.
func repl(n *gobptt.Network, in io.Reader, out io.Writer, log *logrus.Logger) error {
	s := bufio.NewScanner(in)
	inputs := make([]float32, 2)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "exit" {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				log.WithError(err).WithField("input", f).Warn("skipping line")
				ok = false
				break
			}
			inputs[i] = float32(v)
		}
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(out, n.Compute(inputs)); err != nil {
			return err
		}
	}
	return s.Err()
}

// lookbackSequence returns a random sequence in [-1, 1) and targets equal to
// the input lookback steps earlier. The first lookback steps have no target.
func lookbackSequence(rng *rand.Rand, length, lookback int) (sequence, expected [][]float32) {
	sequence = make([][]float32, length)
	expected = make([][]float32, length)
	for i := range sequence {
		sequence[i] = []float32{rng.Float32()*2 - 1}
		if i >= lookback {
			expected[i] = sequence[i-lookback]
		}
	}
	return sequence, expected
}

func trainRecurrent(cfg *Config, rng *rand.Rand, log *logrus.Logger) (*rnn.RecurrentNetwork, error) {
	act, err := gobptt.ActivationByName(cfg.StateActivation)
	if err != nil {
		return nil, err
	}
	gradientStep, err := rnn.ParseGradientStep(cfg.StateGradient)
	if err != nil {
		return nil, err
	}
	tree := []gobptt.LayerDef{{
		NeuronCount: cfg.StateSize,
		Activation:  act,
		InitWeights: gobptt.UniformWeights(rng, 0, 0.1),
		Vectorized:  cfg.Vectorized,
	}}
	outputTree := gobptt.LayerDef{
		NeuronCount: 1,
		Activation:  gobptt.Identity,
		InitWeights: gobptt.UniformWeights(rng, 0, 0.1),
		Vectorized:  cfg.Vectorized,
	}
	layer := rnn.NewRecurrentLayer(1, tree, outputTree)
	layer.StateGradient = gradientStep
	n := rnn.NewRecurrentNetwork(layer, gobptt.OutputDef{
		NeuronCount: 1,
		Activation:  gobptt.Identity,
		Cost:        gobptt.MeanSquaredError,
		InitWeights: gobptt.ConstantWeights(1),
		Vectorized:  cfg.Vectorized,
	}, float32(cfg.LearningRate))

	log.WithFields(logrus.Fields{
		"state":         cfg.StateSize,
		"stateGradient": gradientStep,
		"lookback":      cfg.Lookback,
		"seqLen":        cfg.SeqLen,
		"iterations":    cfg.Iterations,
	}).Info("training recurrent network")

	p := &progress{log: log, every: cfg.LogEvery}
	for i := range cfg.Iterations {
		sequence, expected := lookbackSequence(rng, cfg.SeqLen, cfg.Lookback)
		cost := n.Train(sequence, expected)
		if err := checkCost(cost, cfg.Explode, i); err != nil {
			return nil, err
		}
		p.add(i, cost)
	}

	log.WithFields(logrus.Fields{
		"treeWeights":       n.Layer.Tree.Layers[0].Weights,
		"treeBiases":        n.Layer.Tree.Layers[0].Biases,
		"outputTreeWeights": n.Layer.OutputTree.Weights,
		"outputTreeBiases":  n.Layer.OutputTree.Biases,
	}).Debug("trained")
	return n, nil
}
