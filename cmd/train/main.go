// train: loads or builds a feedforward network and trains it online
//
// Usage:
//
//	train --model=net.json --arch="2b 3b 2" --lr=0.3 --steps=2 --input=0.2,0.8 --target=0.1,0.9
//	train --arch="2b 4b 1" --data=xor.csv --epochs=2000 --output=xor.json
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"github.com/nullptroma/NeuralNetwork/nn"
	"github.com/nullptroma/NeuralNetwork/utils"
)

var (
	modelFile    = flag.String("model", "", "Network file to continue training (JSON or YAML); built from -arch if it cannot be opened")
	name         = flag.String("name", "demo", "Name of a newly built network")
	arch         = flag.String("arch", "2b 3b 2", "Layer sizes, a trailing b adds a bias unit")
	activation   = flag.String("activation", "sigmoid", "Activation: identity, sigmoid, tanh, relu")
	learningRate = flag.Float64("lr", 0.3, "Learning ratio")
	steps        = flag.Int("steps", 2, "Training steps on -input/-target")
	inputFlag    = flag.String("input", "0.2,0.8", "Comma separated input for the training steps")
	targetFlag   = flag.String("target", "0.1,0.9", "Comma separated target for the training steps")
	dataFile     = flag.String("data", "", "CSV samples (inputs then targets per line)")
	epochs       = flag.Int("epochs", 0, "Passes over -data")
	normalize    = flag.Bool("normalize", false, "Standardise -data inputs")
	normFile     = flag.String("norm", "", "Where to save the -normalize transform (JSON)")
	seed         = flag.Uint64("seed", 42, "Random seed for weight initialisation")
	outputFile   = flag.String("output", "", "Where to save the trained network (JSON or YAML)")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	layers, err := utils.ParseArchitecture(*arch)
	if err != nil {
		fatalf("parsing architecture: %v", err)
	}
	config := &utils.Config{
		Name:          *name,
		Architecture:  layers,
		Activation:    *activation,
		LearningRatio: *learningRate,
		Steps:         *steps,
		Epochs:        *epochs,
		Seed:          *seed,
	}
	if err := utils.ValidateConfig(config); err != nil {
		fatalf("invalid configuration: %v", err)
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	net := loadOrBuild(config, stats)
	net.SetActivation(nn.ActivationLookup[config.Activation])
	net.LearningRatio = config.LearningRatio
	net.InitLearn()
	utils.Logf("Network: %s", net)

	trained := 0
	output := make([]float64, net.OutputSize())
	if *dataFile != "" && config.Epochs > 0 {
		trained += trainOnData(net, config, output, stats)
	}

	if config.Steps > 0 {
		input, target := parseSample(net)
		start := time.Now()
		for step := 1; step <= config.Steps; step++ {
			loss, err := net.AdjustWeights(input, target, output)
			if err != nil {
				fatalf("training step %d: %v", step, err)
			}
			fmt.Printf("Step %d | Output: %v | Loss: %.6f\n", step, output, loss)
		}
		stats.TrainTime += time.Since(start)
		trained += config.Steps

		start = time.Now()
		if err := net.ForwardPassData(input, output); err != nil {
			fatalf("forward pass: %v", err)
		}
		stats.InferenceTime += time.Since(start)
		fmt.Printf("Output after training: %v\n", output)
	}

	if *outputFile != "" {
		start := time.Now()
		utils.Logf("Saving network to %s...", *outputFile)
		if err := net.SaveFile(*outputFile); err != nil {
			fatalf("saving network: %v", err)
		}
		stats.SaveTime = time.Since(start)
	}

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, trained)
}

func loadOrBuild(config *utils.Config, stats *utils.TimingStats) *nn.Network {
	if *modelFile != "" {
		start := time.Now()
		net, err := nn.TryLoadFile(*modelFile)
		if err != nil {
			fatalf("loading %s: %v", *modelFile, err)
		}
		stats.LoadTime = time.Since(start)
		if net != nil {
			utils.Logf("Loaded %s", *modelFile)
			return net
		}
		utils.Logf("Cannot open %s, building a new network", *modelFile)
	}

	start := time.Now()
	net, err := nn.NewNetwork(nn.Config{
		Name:     config.Name,
		Topology: config.Architecture,
		Source:   rand.NewSource(config.Seed),
	})
	if err != nil {
		fatalf("building network: %v", err)
	}
	stats.ModelInitTime = time.Since(start)
	return net
}

func trainOnData(net *nn.Network, config *utils.Config, output []float64, stats *utils.TimingStats) int {
	start := time.Now()
	f, err := os.Open(*dataFile)
	if err != nil {
		fatalf("opening data: %v", err)
	}
	samples, err := utils.ReadSamples(f, net.InputSize(), net.OutputSize())
	f.Close()
	if err != nil {
		fatalf("reading data: %v", err)
	}
	if *normalize {
		mean, std := utils.NormalizeSamples(samples)
		if *normFile != "" {
			if err := utils.SaveNormalization(*normFile, &utils.Normalization{Mean: mean, Std: std}); err != nil {
				fatalf("saving normalization: %v", err)
			}
		}
	}
	stats.DataTime = time.Since(start)
	utils.Logf("Loaded %d samples from %s", len(samples), *dataFile)

	start = time.Now()
	for epoch := 1; epoch <= config.Epochs; epoch++ {
		loss, err := net.TrainEpoch(samples, output)
		if err != nil {
			fatalf("epoch %d: %v", epoch, err)
		}
		if epoch == 1 || epoch == config.Epochs || epoch%100 == 0 {
			utils.Logf("Epoch %d/%d | Loss: %.6f", epoch, config.Epochs, loss)
		}
	}
	stats.TrainTime += time.Since(start)
	return config.Epochs * len(samples)
}

func parseSample(net *nn.Network) (input, target []float64) {
	input, err := utils.ParseFloats(*inputFlag)
	if err != nil {
		fatalf("parsing input: %v", err)
	}
	target, err = utils.ParseFloats(*targetFlag)
	if err != nil {
		fatalf("parsing target: %v", err)
	}
	if len(input) != net.InputSize() || len(target) != net.OutputSize() {
		fatalf("network %s needs %d inputs and %d targets, got %d and %d",
			net, net.InputSize(), net.OutputSize(), len(input), len(target))
	}
	return input, target
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
