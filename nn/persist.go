package nn

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax used to persist a network.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Learning ratio, delta buffers and functions are not persisted.
type networkDocument struct {
	Name   string          `json:"name" yaml:"name"`
	Layers []layerDocument `json:"layers" yaml:"layers"`
}

type layerDocument struct {
	Neurons          []float64   `json:"neurons" yaml:"neurons"`
	ActivatedNeurons []float64   `json:"activated_neurons" yaml:"activated_neurons"`
	Bias             bool        `json:"bias" yaml:"bias"`
	Weights          [][]float64 `json:"weights" yaml:"weights"`
}

func (net *Network) document() networkDocument {
	doc := networkDocument{Name: net.Name, Layers: make([]layerDocument, len(net.layers))}
	for i, l := range net.layers {
		doc.Layers[i] = layerDocument{
			Neurons:          l.neurons,
			ActivatedNeurons: l.activatedNeurons,
			Bias:             l.bias,
			Weights:          l.weights,
		}
	}
	return doc
}

// Save writes the network's name and layers to w.
func (net *Network) Save(w io.Writer, f Format) error {
	doc := net.document()
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding network yaml")
		}
		return errors.Wrap(enc.Close(), "encoding network yaml")
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encoding network json")
	}
}

// SaveFile writes the network to path in the format implied by its extension.
func (net *Network) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating network file")
	}
	if err := net.Save(f, FormatForPath(path)); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing network file")
}

// Load decodes a network from r. The result has no activation functions,
// learning ratio or delta buffers; call SetFuncs and InitLearn before use.
func Load(r io.Reader, f Format) (*Network, error) {
	var doc networkDocument
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		err = json.NewDecoder(r).Decode(&doc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decoding network document")
	}
	return fromDocument(doc)
}

// LoadFile reads the network stored at path.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening network file")
	}
	defer f.Close()
	return Load(f, FormatForPath(path))
}

// TryLoadFile is LoadFile, except that it returns a nil network and a nil
// error when the file cannot be opened at all. A file that opens but does
// not decode is still an error.
func TryLoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()
	return Load(f, FormatForPath(path))
}

func fromDocument(doc networkDocument) (*Network, error) {
	if len(doc.Layers) == 0 {
		return nil, errors.Wrap(ErrMalformedDocument, "no layers")
	}
	net := &Network{Name: doc.Name, layers: make([]*Layer, len(doc.Layers))}
	for i, ld := range doc.Layers {
		nextSize := 0
		if i+1 < len(doc.Layers) {
			nextSize = len(doc.Layers[i+1].Neurons)
		}
		if err := ld.validate(nextSize); err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		net.layers[i] = &Layer{
			neurons:          ld.Neurons,
			activatedNeurons: ld.ActivatedNeurons,
			weights:          ld.Weights,
			bias:             ld.Bias,
		}
	}
	return net, nil
}

func (ld layerDocument) validate(nextSize int) error {
	size := len(ld.Neurons)
	if size == 0 {
		return errors.Wrap(ErrMalformedDocument, "no neurons")
	}
	units := size
	if ld.Bias {
		units++
	}
	if len(ld.ActivatedNeurons) != units {
		return errors.Wrapf(ErrMalformedDocument, "%d activated neurons, want %d", len(ld.ActivatedNeurons), units)
	}
	if ld.Bias && ld.ActivatedNeurons[size] != 1 {
		return errors.Wrapf(ErrMalformedDocument, "bias unit is %v, want 1", ld.ActivatedNeurons[size])
	}
	if len(ld.Weights) != units {
		return errors.Wrapf(ErrMalformedDocument, "%d weight rows, want %d", len(ld.Weights), units)
	}
	for j, row := range ld.Weights {
		if len(row) != nextSize {
			return errors.Wrapf(ErrMalformedDocument, "weight row %d has %d columns, want %d", j, len(row), nextSize)
		}
	}
	return nil
}
