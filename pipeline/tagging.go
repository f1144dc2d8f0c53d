package pipeline

import (
	"context"

	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
)

// Pipeline tags every sentence of a request. The returned channel yields
// exactly one Response and is then closed.
type Pipeline func(ctx context.Context, request Request) <-chan Response

func NewTaggingPipeline(model *pos.Model, cfg types.TaggerConfig) Pipeline {
	hmmLogger := logger.NewLogger("Tagging pipeline")
	hmmLogger.Info().
		Interface("config", cfg).
		Int("tags", model.NumTags()).
		Int("vocabulary", model.VocabularySize()).
		Msg("Starting tagging pipeline")

	splitter := NewLineSplitter()
	tagger := NewPOSTagger(pos.NewTagger(model), cfg.Workers)
	builder := NewResponseBuilder(model)

	return func(ctx context.Context, request Request) <-chan Response {
		responseChan := make(chan Response, 1)
		pplnLog := hmmLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started tagging pipeline")

		go func() {
			defer close(responseChan)

			sentences := splitter(ctx, request.Text)
			tagged := tagger(ctx, sentences)
			resp := builder(request, tagged)
			if err := ctx.Err(); err != nil {
				resp.Err = err
				pplnLog.Err(err).Int("sentences", resp.Stats.Sentences).Msg("Tagging pipeline interrupted")
			} else {
				pplnLog.Info().
					Int("sentences", resp.Stats.Sentences).
					Int("tagged", resp.Stats.Tagged).
					Int("no_path", resp.Stats.NoPath).
					Msg("Finished tagging pipeline")
			}
			responseChan <- resp
		}()

		return responseChan
	}
}
