package pos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const maxModelLineLength = 1024 * 1024

// LoadModel reads trans/emit records from r. Any invalid probability aborts
// the load.
func LoadModel(r io.Reader, opts Options) (*Model, error) {
	if err := validateOptions(opts); err != nil {
		return nil, &LoadError{Err: err}
	}

	model := newModel(opts)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxModelLineLength)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		rec, err := ParseRecord(scanner.Text())
		if err != nil {
			return nil, &LoadError{Line: lineNum, Err: err}
		}

		switch rec.Kind {
		case RecordTransition:
			model.addTransition(rec.Trigram, rec.LogProb())
		case RecordEmission:
			model.addEmission(rec.Emission, rec.LogProb())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Line: lineNum + 1, Err: err}
	}

	return model, nil
}

func LoadModelFromFile(modelFilePath string, opts Options) (*Model, error) {
	f, err := os.Open(modelFilePath)
	if err != nil {
		return nil, &LoadError{Path: modelFilePath, Err: err}
	}
	defer f.Close()

	model, err := LoadModel(f, opts)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = modelFilePath
		}
		return nil, err
	}
	return model, nil
}

func validateOptions(opts Options) error {
	switch {
	case opts.InitTag == "" || opts.FinalTag == "" || opts.OOVSymbol == "":
		return errors.New("init tag, final tag and OOV symbol must be set")
	case opts.InitTag == opts.FinalTag:
		return fmt.Errorf("init and final tags must differ, both are %q", opts.InitTag)
	case opts.FloorProbability <= 0 || opts.FloorProbability > 1:
		return fmt.Errorf("floor probability must be in (0, 1], got %v", opts.FloorProbability)
	}
	return nil
}
