package pos

import (
	"math"
)

const (
	DefaultInitTag          = "init"
	DefaultFinalTag         = "final"
	DefaultOOVSymbol        = "OOV"
	DefaultFloorProbability = 0.0000001
)

// Trigram keys the transition table: the probability of Tag given the two
// preceding tags.
type Trigram struct {
	PrevPrev string
	Prev     string
	Tag      string
}

// Emission keys the emission table.
type Emission struct {
	Tag  string
	Word string
}

type Options struct {
	InitTag          string
	FinalTag         string
	OOVSymbol        string
	FloorProbability float64
}

func DefaultOptions() Options {
	return Options{
		InitTag:          DefaultInitTag,
		FinalTag:         DefaultFinalTag,
		OOVSymbol:        DefaultOOVSymbol,
		FloorProbability: DefaultFloorProbability,
	}
}

// Model is a trigram HMM. It is built once by LoadModel and never modified
// afterwards, so a single Model can be shared by concurrent decoders.
type Model struct {
	tags        []string
	tagIndex    map[string]int
	transitions map[Trigram]float64
	emissions   map[Emission]float64
	vocabulary  map[string]struct{}

	initTag    string
	finalTag   string
	oovSymbol  string
	floorLogPr float64
}

func newModel(opts Options) *Model {
	m := &Model{
		tagIndex:    make(map[string]int),
		transitions: make(map[Trigram]float64),
		emissions:   make(map[Emission]float64),
		vocabulary:  make(map[string]struct{}),
		initTag:     opts.InitTag,
		finalTag:    opts.FinalTag,
		oovSymbol:   opts.OOVSymbol,
		floorLogPr:  math.Log(opts.FloorProbability),
	}
	m.addTag(opts.InitTag)
	m.addTag(opts.FinalTag)
	return m
}

func (m *Model) addTag(tag string) {
	if _, ok := m.tagIndex[tag]; ok {
		return
	}
	m.tagIndex[tag] = len(m.tags)
	m.tags = append(m.tags, tag)
}

func (m *Model) addTransition(key Trigram, logProb float64) {
	m.transitions[key] = logProb
	m.addTag(key.PrevPrev)
	m.addTag(key.Prev)
	m.addTag(key.Tag)
}

func (m *Model) addEmission(key Emission, logProb float64) {
	m.emissions[key] = logProb
	m.vocabulary[key.Word] = struct{}{}
	m.addTag(key.Tag)
}

// Tags returns the tag set in enumeration order: the sentinels first, then
// tags in the order they were first seen in the model file.
func (m *Model) Tags() []string {
	tags := make([]string, len(m.tags))
	copy(tags, m.tags)
	return tags
}

func (m *Model) NumTags() int {
	return len(m.tags)
}

func (m *Model) VocabularySize() int {
	return len(m.vocabulary)
}

func (m *Model) InitTag() string {
	return m.initTag
}

func (m *Model) FinalTag() string {
	return m.finalTag
}

// FloorLogProb is the log-probability used for every emission the model does
// not define.
func (m *Model) FloorLogProb() float64 {
	return m.floorLogPr
}

// TransitionLogProb reports the log-probability of a trigram transition.
// A trigram absent from the model is impossible and reported with ok=false.
func (m *Model) TransitionLogProb(key Trigram) (logProb float64, ok bool) {
	logProb, ok = m.transitions[key]
	return logProb, ok
}

// EmissionLogProb reports the log-probability of a word under a tag. Pairs
// absent from the model get the floor value; the table is not modified.
func (m *Model) EmissionLogProb(key Emission) float64 {
	if logProb, ok := m.emissions[key]; ok {
		return logProb
	}
	return m.floorLogPr
}

func (m *Model) InVocabulary(word string) bool {
	_, ok := m.vocabulary[word]
	return ok
}

// Normalize maps a sentence token to the symbol used for table lookups.
func (m *Model) Normalize(token string) string {
	if m.InVocabulary(token) {
		return token
	}
	return m.oovSymbol
}
