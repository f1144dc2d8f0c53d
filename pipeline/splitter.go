package pipeline

import (
	"bufio"
	"context"
	"strings"

	"text2phenotype.com/hmmtag/types"
)

// NewLineSplitter returns a stage that emits one sentence per input line.
// A trailing newline does not start an extra sentence.
func NewLineSplitter() func(ctx context.Context, text string) <-chan types.Sentence {
	return func(ctx context.Context, text string) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			scanner := bufio.NewScanner(strings.NewReader(text))
			scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)

			for index := 0; scanner.Scan(); index++ {
				select {
				case out <- types.NewSentence(index, scanner.Text()):
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	}
}
