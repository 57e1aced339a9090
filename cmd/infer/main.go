// infer: runs a forward pass of a saved network
//
// Usage:
//
//	infer --model=net.json --activation=sigmoid --input=0.2,0.8
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nullptroma/NeuralNetwork/nn"
	"github.com/nullptroma/NeuralNetwork/utils"
)

var (
	modelFile  = flag.String("model", "", "Network file (JSON or YAML)")
	activation = flag.String("activation", "sigmoid", "Activation the network was trained with")
	inputFlag  = flag.String("input", "", "Comma separated input")
	normFile   = flag.String("norm", "", "Normalization written by train -norm")
	verbose    = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *modelFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -model is required")
		os.Exit(1)
	}
	act, ok := nn.ActivationLookup[*activation]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown activation %q\n", *activation)
		os.Exit(1)
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	net, err := nn.LoadFile(*modelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading network: %v\n", err)
		os.Exit(1)
	}
	stats.LoadTime = time.Since(totalStart)
	net.SetActivation(act)
	utils.Logf("Loaded %s", net)

	input, err := utils.ParseFloats(*inputFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(1)
	}
	if *normFile != "" {
		norm, err := utils.LoadNormalization(*normFile)
		if err == nil {
			err = norm.Apply(input)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error normalizing input: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	output, err := net.Forward(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running inference: %v\n", err)
		os.Exit(1)
	}
	stats.InferenceTime = time.Since(start)
	fmt.Printf("Output: %v\n", output)

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, 0)
}
