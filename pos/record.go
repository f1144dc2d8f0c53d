package pos

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type RecordKind int

const (
	RecordUnrecognized RecordKind = iota
	RecordTransition
	RecordEmission
)

const (
	transitionKeyword = "trans"
	emissionKeyword   = "emit"
)

var errNonPositiveProbability = errors.New("probability must be positive")

// Record is one classified line of a model file. Only the key matching Kind
// is set.
type Record struct {
	Kind        RecordKind
	Trigram     Trigram
	Emission    Emission
	Probability float64
}

// LogProb is the natural logarithm of the record's probability.
func (rec Record) LogProb() float64 {
	return math.Log(rec.Probability)
}

// ParseRecord classifies a model file line. Lines that are neither
// transitions nor emissions are returned as RecordUnrecognized without error.
// Fields past the expected ones are ignored.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Record{Kind: RecordUnrecognized}, nil
	}

	switch {
	case fields[0] == transitionKeyword && len(fields) >= 5:
		p, err := parseProbability(fields[4])
		if err != nil {
			return Record{}, err
		}
		return Record{
			Kind:        RecordTransition,
			Trigram:     Trigram{PrevPrev: fields[1], Prev: fields[2], Tag: fields[3]},
			Probability: p,
		}, nil
	case fields[0] == emissionKeyword && len(fields) >= 4:
		p, err := parseProbability(fields[3])
		if err != nil {
			return Record{}, err
		}
		return Record{
			Kind:        RecordEmission,
			Emission:    Emission{Tag: fields[1], Word: fields[2]},
			Probability: p,
		}, nil
	}

	return Record{Kind: RecordUnrecognized}, nil
}

func parseProbability(field string) (float64, error) {
	p, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probability %q: %w", field, err)
	}
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w, got %q", errNonPositiveProbability, field)
	}
	return p, nil
}
