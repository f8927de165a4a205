// Package main provides the fcnet CLI.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/born-ml/fcnet/internal/parallel"
	"github.com/born-ml/fcnet/nn"
	"github.com/born-ml/fcnet/tensor"
	"gonum.org/v1/gonum/mat"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "version":
		fmt.Printf("fcnet %s\n", version)
	case "gradcheck":
		err = runGradcheck(args)
	case "init":
		err = runInit(args)
	case "eval":
		err = runEval(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("fcnet - fully-connected softmax classifiers")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                                   Show version")
	fmt.Println("  gradcheck [-step h] [-seed s]              Compare analytic and numeric gradients")
	fmt.Println("  init -config cfg.yaml -out net.safetensors Build a network and save it")
	fmt.Println("  eval -checkpoint net.safetensors [-n N]    Score a synthetic batch")
}

// newFlags returns a flag set with the shared -v flag and a logger bound to it.
func newFlags(name string) (*flag.FlagSet, func() *slog.Logger) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("v", false, "Enable debug logging")
	return fs, func() *slog.Logger {
		level := slog.LevelInfo
		if *verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return logger
	}
}

// synthetic returns n standard normal samples of width d with uniform labels.
func synthetic(rng *rand.Rand, n, d, classes int) (*mat.Dense, []int) {
	data := make([]float64, n*d)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	labels := make([]int, n)
	for i := range labels {
		labels[i] = rng.IntN(classes)
	}
	return mat.NewDense(n, d, data), labels
}

func runGradcheck(args []string) error {
	fs, logger := newFlags("gradcheck")
	step := fs.Float64("step", 1e-5, "Finite-difference step")
	seed := fs.Uint64("seed", 231, "Seed for data, weights and dropout masks")
	_ = fs.Parse(args)
	log := logger()

	const (
		batchSize = 2
		inputDim  = 15
		classes   = 10
	)
	rng := rand.New(rand.NewPCG(*seed, *seed))
	x, labels := synthetic(rng, batchSize, inputDim, classes)

	variants := []struct {
		name   string
		modify func(*nn.Config)
	}{
		{"plain", func(*nn.Config) {}},
		{"batchnorm", func(c *nn.Config) { c.UseBatchNorm = true }},
		{"dropout", func(c *nn.Config) { c.Dropout = 0.5 }},
	}

	type job struct {
		name string
		cfg  nn.Config
	}
	var jobs []job
	for _, v := range variants {
		for _, reg := range []float64{0, 3.14} {
			cfg := nn.DefaultConfig(20, 30)
			cfg.InputDim = inputDim
			cfg.NumClasses = classes
			cfg.WeightScale = 5e-2
			cfg.Precision = tensor.Float64
			cfg.InitSeed = seed
			cfg.Seed = seed
			cfg.Reg = reg
			cfg.Logger = log
			v.modify(&cfg)
			jobs = append(jobs, job{fmt.Sprintf("%s reg=%v", v.name, reg), cfg})
		}
	}

	type outcome struct {
		errs map[string]float64
		err  error
	}
	// Every job owns its network, so the checks are independent.
	results := parallel.Map(len(jobs), func(i int) outcome {
		net, err := nn.NewFullyConnectedNet(jobs[i].cfg)
		if err != nil {
			return outcome{err: err}
		}
		errs, err := nn.CheckGradients(net, x, labels, *step)
		return outcome{errs, err}
	}, parallel.DefaultConfig())

	worst := 0.0
	for i, r := range results {
		if r.err != nil {
			return r.err
		}
		fmt.Println(jobs[i].name)
		names := make([]string, 0, len(r.errs))
		for name := range r.errs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-7s relative error: %.2e\n", name, r.errs[name])
			worst = max(worst, r.errs[name])
		}
	}

	log.Info("gradient check done", "max_relative_error", worst)
	if worst > 1e-5 {
		return fmt.Errorf("max relative error %.2e exceeds 1e-5", worst)
	}
	return nil
}

func runInit(args []string) error {
	fs, logger := newFlags("init")
	configPath := fs.String("config", "", "YAML network configuration (required)")
	out := fs.String("out", "net.safetensors", "Checkpoint file to write")
	_ = fs.Parse(args)
	log := logger()

	if *configPath == "" {
		fs.Usage()
		return fmt.Errorf("-config is required")
	}

	cfg, err := nn.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg.Logger = log

	net, err := nn.NewFullyConnectedNet(cfg)
	if err != nil {
		return err
	}
	if err := nn.SaveCheckpoint(*out, net); err != nil {
		return err
	}

	log.Info("network saved",
		"path", *out,
		"layers", net.NumLayers(),
		"parameters", net.Params().Len())
	return nil
}

func runEval(args []string) error {
	fs, logger := newFlags("eval")
	checkpoint := fs.String("checkpoint", "", "Checkpoint file to load (required)")
	n := fs.Int("n", 100, "Number of synthetic samples")
	seed := fs.Uint64("seed", 1, "Seed for the synthetic batch")
	_ = fs.Parse(args)
	log := logger()

	if *checkpoint == "" {
		fs.Usage()
		return fmt.Errorf("-checkpoint is required")
	}

	net, err := nn.LoadCheckpoint(*checkpoint)
	if err != nil {
		return err
	}
	cfg := net.Config()

	x, labels := synthetic(rand.New(rand.NewPCG(*seed, *seed)), *n, cfg.InputDim, cfg.NumClasses)
	res, err := net.Compute(x, labels)
	if err != nil {
		return err
	}
	acc, err := nn.Accuracy(net, x, labels)
	if err != nil {
		return err
	}

	log.Info("evaluated", "samples", *n, "loss", res.Loss, "accuracy", acc)
	fmt.Printf("loss: %.6f\naccuracy: %.4f\n", res.Loss, acc)
	return nil
}
