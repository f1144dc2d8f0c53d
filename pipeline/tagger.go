package pipeline

import (
	"context"
	"errors"
	"sync"

	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

// NewPOSTagger returns a stage decoding sentences on a pool of workers.
// Sentences leave the stage in completion order; use Index to restore the
// input order. A sentence without a path is passed on with NoPath set.
func NewPOSTagger(tagger pos.Tagger, workers int) func(ctx context.Context, in <-chan types.Sentence) <-chan types.Sentence {
	if workers < 1 {
		workers = 1
	}
	hmmLogger := logger.NewLogger("POS tagger")

	return func(ctx context.Context, in <-chan types.Sentence) <-chan types.Sentence {
		out := make(chan types.Sentence)
		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for sent := range in {
						if ctx.Err() != nil {
							continue
						}
						tags, err := tagger(sent.Tokens)
						if err != nil {
							sent.NoPath = true
							if !errors.Is(err, pos.ErrNoPath) {
								hmmLogger.Err(err).Int("sentence", sent.Index).Msg("Unexpected decoding error")
							} else {
								hmmLogger.Debug().Int("sentence", sent.Index).Int("tokens", len(sent.Tokens)).Msg("No tag path for sentence")
							}
						}
						sent.Tags = tags
						out <- sent
					}
				}()
			}
			wg.Wait()
		}()
		return out
	}
}
