package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/serialization"
)

// ModelType identifies checkpoints written by Save.
const ModelType = "segnmt"

// ErrCheckpointMismatch is returned when a checkpoint does not fit the model.
var ErrCheckpointMismatch = errors.New("checkpoint does not match model")

// Save writes all weights to a SafeTensors file.
func (m *Model) Save(path string) error {
	params := m.NamedParameters()
	tensors := make(map[string]*mat.Dense, len(params))
	for _, np := range params {
		tensors[np.Name] = np.Param.Value()
	}
	metadata := map[string]string{
		"model_type": ModelType,
		"languages":  strings.Join(m.config.Languages, ","),
		"vocab_size": strconv.Itoa(m.vocab.Len()),
	}
	if err := serialization.WriteFile(path, tensors, metadata); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// Load replaces all weights with those of a file written by Save. Nothing is
// changed when the file does not match the model. Directions must be created
// after Load: they cache marker seeds computed from the weights.
func (m *Model) Load(path string) error {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if t := f.Metadata["model_type"]; t != "" && t != ModelType {
		return fmt.Errorf("%w: model type %q", ErrCheckpointMismatch, t)
	}
	if n := f.Metadata["vocab_size"]; n != "" && n != strconv.Itoa(m.vocab.Len()) {
		return fmt.Errorf("%w: vocabulary size %s, model has %d", ErrCheckpointMismatch, n, m.vocab.Len())
	}

	params := m.NamedParameters()
	for _, np := range params {
		t, ok := f.Tensors[np.Name]
		if !ok {
			return fmt.Errorf("%w: missing tensor %s", ErrCheckpointMismatch, np.Name)
		}
		wr, wc := np.Param.Value().Dims()
		if r, c := t.Dims(); r != wr || c != wc {
			return fmt.Errorf("%w: %s has shape [%d %d], model expects [%d %d]",
				ErrCheckpointMismatch, np.Name, r, c, wr, wc)
		}
	}
	for _, np := range params {
		if err := np.Param.Set(f.Tensors[np.Name]); err != nil {
			return fmt.Errorf("%w: %w", ErrCheckpointMismatch, err)
		}
	}
	m.logger.Info("weights loaded", "path", path, "tensors", len(params))
	return nil
}
