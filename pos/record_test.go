package pos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("trans init NN VB 0.25")
	require.NoError(t, err)
	require.Equal(t, Record{
		Kind:        RecordTransition,
		Trigram:     Trigram{PrevPrev: "init", Prev: "NN", Tag: "VB"},
		Probability: 0.25,
	}, rec)

	rec, err = ParseRecord("emit\tNN\tdog\t1e-3")
	require.NoError(t, err)
	require.Equal(t, Record{
		Kind:        RecordEmission,
		Emission:    Emission{Tag: "NN", Word: "dog"},
		Probability: 0.001,
	}, rec)

	rec, err = ParseRecord("emit NN dog 0.5 trailing")
	require.NoError(t, err)
	require.Equal(t, RecordEmission, rec.Kind)
	require.Equal(t, 0.5, rec.Probability)
}

func TestParseRecordUnrecognized(t *testing.T) {
	for _, line := range []string{"", "   ", "trans a b c", "emit a b", "transition a b c 0.5", "EMIT a b 0.5"} {
		rec, err := ParseRecord(line)
		require.NoError(t, err, line)
		require.Equal(t, RecordUnrecognized, rec.Kind, line)
	}
}

func TestParseRecordRejectsNonPositive(t *testing.T) {
	_, err := ParseRecord("trans a b c 0")
	require.True(t, errors.Is(err, errNonPositiveProbability))

	_, err = ParseRecord("emit a b -1")
	require.True(t, errors.Is(err, errNonPositiveProbability))

	_, err = ParseRecord("emit a b NaN")
	require.True(t, errors.Is(err, errNonPositiveProbability))

	_, err = ParseRecord("emit a b x")
	require.Error(t, err)
	require.False(t, errors.Is(err, errNonPositiveProbability))
}
