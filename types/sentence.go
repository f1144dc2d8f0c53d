package types

import (
	"strings"
)

// Sentence is one line of tagging input. Index is the zero-based line number
// and drives the order of the output.
type Sentence struct {
	Index  int
	Tokens []string
	Tags   []string
	NoPath bool
}

func NewSentence(index int, line string) Sentence {
	return Sentence{
		Index:  index,
		Tokens: strings.Fields(line),
	}
}

// Line renders the sentence as one output line: the space-joined tags, or an
// empty string when the sentence could not be decoded.
func (sent Sentence) Line() string {
	if sent.NoPath {
		return ""
	}
	return strings.Join(sent.Tags, " ")
}
