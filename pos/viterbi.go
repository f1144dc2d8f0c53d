package pos

import (
	"math"
)

var impossibleScore = math.Inf(-1)

// Terminal is the winning end state of a decoded sentence: the last two tags
// and the log-probability of the best path including the final transition.
type Terminal struct {
	Prev  string
	Last  string
	Score float64

	prev int
	last int
}

// Trellis holds the best partial-path scores and backpointers of one
// sentence. Cells are indexed by position and the (u, v) tag pair ending at
// that position.
type Trellis struct {
	tags         []string
	scores       [][]float64
	backpointers [][]int
}

func newTrellis(tags []string, n int) *Trellis {
	numTags := len(tags)
	t := &Trellis{
		tags:         tags,
		scores:       make([][]float64, n+1),
		backpointers: make([][]int, n+1),
	}
	for k := 0; k <= n; k++ {
		t.scores[k] = make([]float64, numTags*numTags)
		t.backpointers[k] = make([]int, numTags*numTags)
		for i := range t.scores[k] {
			t.scores[k][i] = impossibleScore
			t.backpointers[k][i] = -1
		}
	}
	return t
}

func (t *Trellis) cell(u, v int) int {
	return u*len(t.tags) + v
}

func (t *Trellis) score(k, u, v int) float64 {
	return t.scores[k][t.cell(u, v)]
}

func (t *Trellis) defined(k, u, v int) bool {
	return t.scores[k][t.cell(u, v)] != impossibleScore
}

func (t *Trellis) backpointer(k, u, v int) int {
	return t.backpointers[k][t.cell(u, v)]
}

// Score reports π(k, u, v) by tag name.
func (t *Trellis) Score(k int, u, v string) (float64, bool) {
	ui, vi := t.indexOf(u), t.indexOf(v)
	if ui < 0 || vi < 0 || k < 0 || k >= len(t.scores) || !t.defined(k, ui, vi) {
		return 0, false
	}
	return t.score(k, ui, vi), true
}

func (t *Trellis) indexOf(tag string) int {
	for i, candidate := range t.tags {
		if candidate == tag {
			return i
		}
	}
	return -1
}

// Decode runs the trigram Viterbi forward pass over tokens. It returns the
// best terminal state together with the filled trellis, or a *NoPathError
// when no path ends with a transition into the final tag.
func Decode(model *Model, tokens []string) (Terminal, *Trellis, error) {
	n := len(tokens)
	words := make([]string, n)
	for i, token := range tokens {
		words[i] = model.Normalize(token)
	}

	tags := model.tags
	numTags := len(tags)
	initIdx := model.tagIndex[model.initTag]
	trellis := newTrellis(tags, n)
	trellis.scores[0][trellis.cell(initIdx, initIdx)] = 0

	emissions := make([]float64, numTags)
	for k := 1; k <= n; k++ {
		for v := 0; v < numTags; v++ {
			emissions[v] = model.EmissionLogProb(Emission{Tag: tags[v], Word: words[k-1]})
		}

		curScores := trellis.scores[k]
		curBackpointers := trellis.backpointers[k]
		for w := 0; w < numTags; w++ {
			for u := 0; u < numTags; u++ {
				if !trellis.defined(k-1, w, u) {
					continue
				}
				prev := trellis.score(k-1, w, u)
				for v := 0; v < numTags; v++ {
					transition, ok := model.TransitionLogProb(Trigram{PrevPrev: tags[w], Prev: tags[u], Tag: tags[v]})
					if !ok {
						continue
					}
					candidate := prev + transition + emissions[v]
					cell := trellis.cell(u, v)
					// ties keep the earlier w
					if candidate > curScores[cell] {
						curScores[cell] = candidate
						curBackpointers[cell] = w
					}
				}
			}
		}
	}

	best, found := terminate(model, trellis, n)
	if !found {
		return Terminal{}, nil, &NoPathError{Tokens: n}
	}
	return best, trellis, nil
}

// terminate picks the (u, v) pair with the best score into the final tag.
// Pairs are visited in tag order and only a strictly better score replaces
// the current best, so the first of several equal pairs wins.
func terminate(model *Model, trellis *Trellis, n int) (Terminal, bool) {
	tags := model.tags
	var best Terminal
	found := false
	for u := range tags {
		for v := range tags {
			if !trellis.defined(n, u, v) {
				continue
			}
			transition, ok := model.TransitionLogProb(Trigram{PrevPrev: tags[u], Prev: tags[v], Tag: model.finalTag})
			if !ok {
				continue
			}
			score := trellis.score(n, u, v) + transition
			if !found || score > best.Score {
				best = Terminal{Prev: tags[u], Last: tags[v], Score: score, prev: u, last: v}
				found = true
			}
		}
	}
	return best, found
}
