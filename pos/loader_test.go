package pos

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const timeFliesModel = `trans init init N 1.0
trans init N V 1.0
trans N V final 1.0
trans init init V 0.0000001
trans init V N 0.0000001
trans V N final 0.0000001
emit N time 1.0
emit V flies 1.0
emit V time 0.0000001
emit N flies 0.0000001
`

func loadTestModel(t *testing.T, text string) *Model {
	t.Helper()
	model, err := LoadModel(strings.NewReader(text), DefaultOptions())
	require.NoError(t, err)
	return model
}

func TestLoadModel(t *testing.T) {
	model := loadTestModel(t, timeFliesModel)

	require.Equal(t, []string{"init", "final", "N", "V"}, model.Tags())
	require.Equal(t, 4, model.NumTags())
	require.Equal(t, 2, model.VocabularySize())
	require.True(t, model.InVocabulary("time"))
	require.False(t, model.InVocabulary("OOV"))

	logProb, ok := model.TransitionLogProb(Trigram{"init", "N", "V"})
	require.True(t, ok)
	require.Equal(t, 0.0, logProb)

	logProb, ok = model.TransitionLogProb(Trigram{"init", "V", "N"})
	require.True(t, ok)
	require.InDelta(t, math.Log(0.0000001), logProb, 1e-12)

	_, ok = model.TransitionLogProb(Trigram{"N", "N", "N"})
	require.False(t, ok)
}

func TestLoadModelIgnoresUnrecognizedLines(t *testing.T) {
	model := loadTestModel(t, "# comment\n\ntrans init init N\nemit N\nfoo bar baz 1\ntrans init init N 0.5\n")

	require.Equal(t, []string{"init", "final", "N"}, model.Tags())
	require.Equal(t, 0, model.VocabularySize())
	_, ok := model.TransitionLogProb(Trigram{"init", "init", "N"})
	require.True(t, ok)
}

func TestLoadModelLaterRecordOverwrites(t *testing.T) {
	model := loadTestModel(t, "emit N dog 0.5\nemit N dog 0.25\n")
	require.InDelta(t, math.Log(0.25), model.EmissionLogProb(Emission{"N", "dog"}), 1e-12)
	require.Equal(t, 1, model.VocabularySize())
}

func TestLoadModelInvalidProbability(t *testing.T) {
	cases := map[string]string{
		"zero":       "trans init init N 1.0\nemit N dog 0\n",
		"negative":   "trans init init N -0.5\n",
		"unparsable": "trans init init N 1.0\ntrans init N V one\n",
		"infinite":   "emit N dog +Inf\n",
	}
	lines := map[string]int{"zero": 2, "negative": 1, "unparsable": 2, "infinite": 1}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadModel(strings.NewReader(text), DefaultOptions())
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			require.Equal(t, lines[name], loadErr.Line)
		})
	}
}

func TestLoadModelInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.FloorProbability = 0
	_, err := LoadModel(strings.NewReader(timeFliesModel), opts)
	require.Error(t, err)

	opts = DefaultOptions()
	opts.FinalTag = opts.InitTag
	_, err = LoadModel(strings.NewReader(timeFliesModel), opts)
	require.Error(t, err)
}

func TestLoadModelFromFile(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "my.hmm")
	require.NoError(t, os.WriteFile(modelPath, []byte(timeFliesModel), 0o600))

	model, err := LoadModelFromFile(modelPath, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 4, model.NumTags())

	_, err = LoadModelFromFile(filepath.Join(dir, "missing.hmm"), DefaultOptions())
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, filepath.Join(dir, "missing.hmm"), loadErr.Path)
	require.True(t, errors.Is(err, os.ErrNotExist))

	badPath := filepath.Join(dir, "bad.hmm")
	require.NoError(t, os.WriteFile(badPath, []byte("emit N dog 0\n"), 0o600))
	_, err = LoadModelFromFile(badPath, DefaultOptions())
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, badPath, loadErr.Path)
	require.Contains(t, err.Error(), "line 1")
}
