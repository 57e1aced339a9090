package utils

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/nullptroma/NeuralNetwork/nn"
)

// ReadSamples reads one sample per line: inputNum input values followed by
// outputNum target values, comma separated. Blank lines are skipped.
func ReadSamples(reader io.Reader, inputNum, outputNum int) ([]nn.Sample, error) {
	scanner := bufio.NewScanner(reader)
	var samples []nn.Sample
	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		splits := strings.Split(text, ",")
		if len(splits) != inputNum+outputNum {
			return nil, InvalidLineError{
				LineNum:  lineNum,
				Splits:   len(splits),
				Expected: inputNum + outputNum,
			}
		}
		values := make([]float64, len(splits))
		for i, split := range splits {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing line %d column %d", lineNum, i+1)
			}
			values[i] = num
		}
		samples = append(samples, nn.Sample{
			Input:  values[:inputNum:inputNum],
			Target: values[inputNum:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading samples")
	}
	return samples, nil
}

// InvalidLineError reports a sample line with the wrong number of values.
type InvalidLineError struct {
	LineNum  int
	Splits   int
	Expected int
}

func (e InvalidLineError) Error() string {
	return fmt.Sprintf("line %d has %d values, expected %d", e.LineNum, e.Splits, e.Expected)
}

// NormalizeSamples standardises every input feature to zero mean and unit
// population standard deviation, in place. Constant features are only
// centred. The per-feature means and deviations are returned so the same
// transform can be applied at inference time.
func NormalizeSamples(samples []nn.Sample) (mean, std []float64) {
	if len(samples) == 0 {
		return nil, nil
	}
	numEntries := len(samples[0].Input)
	mean = make([]float64, numEntries)
	std = make([]float64, numEntries)
	column := make([]float64, len(samples))
	for j := 0; j < numEntries; j++ {
		for i, s := range samples {
			column[i] = s.Input[j]
		}
		mean[j], std[j] = stat.PopMeanStdDev(column, nil)
	}
	for _, s := range samples {
		NormalizeInput(s.Input, mean, std)
	}
	return mean, std
}

// NormalizeInput applies a transform computed by NormalizeSamples to input.
func NormalizeInput(input, mean, std []float64) {
	for j := range input {
		input[j] -= mean[j]
		if std[j] != 0 {
			input[j] /= std[j]
		}
	}
}
