package worker

import (
	"bytes"
	"sync"

	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/utils"
)

const maxCachedModels = 8

type loadedModel struct {
	fingerprint string
	model       *pos.Model
	ppln        pipeline.Pipeline
}

// modelCache keeps parsed models keyed by the fingerprint of their file
// contents, so tasks sharing a model file parse it once.
type modelCache struct {
	mu           sync.Mutex
	taggerConfig types.TaggerConfig
	models       map[string]*loadedModel
}

func newModelCache(taggerConfig types.TaggerConfig) *modelCache {
	return &modelCache{
		taggerConfig: taggerConfig,
		models:       make(map[string]*loadedModel),
	}
}

func (cache *modelCache) get(data []byte) (*loadedModel, error) {
	fingerprint := utils.Fingerprint(data)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if loaded, ok := cache.models[fingerprint]; ok {
		return loaded, nil
	}

	model, err := pos.LoadModel(bytes.NewReader(data), cache.taggerConfig.ModelOptions())
	if err != nil {
		return nil, err
	}
	if len(cache.models) >= maxCachedModels {
		cache.models = make(map[string]*loadedModel)
	}
	loaded := &loadedModel{
		fingerprint: fingerprint,
		model:       model,
		ppln:        pipeline.NewTaggingPipeline(model, cache.taggerConfig),
	}
	cache.models[fingerprint] = loaded
	return loaded, nil
}
