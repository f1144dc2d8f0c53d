package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

type Stats struct {
	Sentences int `json:"sentences"`
	Tagged    int `json:"tagged"`
	NoPath    int `json:"no_path"`
}

// Response is the tagged batch. Lines holds one entry per input sentence, in
// input order; sentences without a path have an empty line.
type Response struct {
	Tid            string
	NumTags        int
	VocabularySize int
	Lines          []string
	Stats          Stats
	Err            error
}

// WriteTo writes the tag and vocabulary counts followed by one line per
// sentence.
func (resp Response) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	count := func(n int, err error) error {
		written += int64(n)
		return err
	}

	if err := count(fmt.Fprintf(bw, "%d\n%d\n", resp.NumTags, resp.VocabularySize)); err != nil {
		return written, err
	}
	for _, line := range resp.Lines {
		if err := count(bw.WriteString(line)); err != nil {
			return written, err
		}
		if err := count(1, bw.WriteByte('\n')); err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

func (resp Response) String() string {
	var sb strings.Builder
	_, _ = resp.WriteTo(&sb)
	return sb.String()
}

func NewResponseBuilder(model *pos.Model) func(request Request, in <-chan types.Sentence) Response {
	return func(request Request, in <-chan types.Sentence) Response {
		resp := Response{
			Tid:            request.Tid,
			NumTags:        model.NumTags(),
			VocabularySize: model.VocabularySize(),
		}

		for sent := range in {
			for len(resp.Lines) <= sent.Index {
				resp.Lines = append(resp.Lines, "")
			}
			resp.Lines[sent.Index] = sent.Line()

			resp.Stats.Sentences++
			if sent.NoPath {
				resp.Stats.NoPath++
			} else {
				resp.Stats.Tagged++
			}
		}
		return resp
	}
}
