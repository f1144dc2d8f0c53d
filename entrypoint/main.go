package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/api"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/s3client"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/worker"
)

type Config struct {
	ConfigPath    string `envconfig:"HMM_CONFIG_PATH" default:""`
	WorkerActive  bool   `envconfig:"HMM_WORKER_ACTIVE" default:"false"`
	RestAPIActive bool   `envconfig:"HMM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"HMM_REST_API_PORT" default:"10000"`
	APIModelPath  string `envconfig:"HMM_API_MODEL_PATH" default:""`
}

const usage = "usage: entrypoint <model-file> <sentence-file>"

func main() {
	logger.SetupLogging()
	hmmLogger := logger.NewLogger("Main")
	defer logger.LogPanic(hmmLogger)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
	}
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		hmmLogger.Fatal().Err(err).Msg("Failed to read environment")
	}
	taggerConfig, err := types.LoadTaggerConfig(config.ConfigPath)
	if err != nil {
		hmmLogger.Fatal().Err(err).Msg("Failed to load tagger config")
	}

	args := flag.Args()
	switch {
	case len(args) == 2:
		if err = tagFiles(args[0], args[1], taggerConfig, os.Stdout, &hmmLogger); err != nil {
			hmmLogger.Fatal().Err(err).Msg("Tagging failed")
		}
	case len(args) == 0 && (config.WorkerActive || config.RestAPIActive):
		serve(config, taggerConfig, &hmmLogger)
	default:
		flag.Usage()
		os.Exit(1)
	}
}

// tagFiles runs one batch and writes the tagger output to out.
func tagFiles(modelPath, sentencesPath string, taggerConfig types.TaggerConfig, out io.Writer, hmmLogger *zerolog.Logger) error {
	files := newFileReader()
	defer files.close()

	model, err := loadModel(files, modelPath, taggerConfig.ModelOptions())
	if err != nil {
		return err
	}
	hmmLogger.Info().
		Str("model", modelPath).
		Int("tags", model.NumTags()).
		Int("vocabulary", model.VocabularySize()).
		Msg("Loaded model")

	sentences, err := files.read(sentencesPath)
	if err != nil {
		return fmt.Errorf("read sentences %s: %w", sentencesPath, err)
	}

	ppln := pipeline.NewTaggingPipeline(model, taggerConfig)
	resp := <-ppln(context.Background(), pipeline.Request{Tid: "cli", Text: string(sentences)})
	if resp.Err != nil {
		return resp.Err
	}
	_, err = resp.WriteTo(out)
	return err
}

func loadModel(files *fileReader, modelPath string, opts pos.Options) (*pos.Model, error) {
	if _, _, ok := s3client.ParseURI(modelPath); !ok {
		return pos.LoadModelFromFile(modelPath, opts)
	}
	data, err := files.read(modelPath)
	if err != nil {
		return nil, &pos.LoadError{Path: modelPath, Err: err}
	}
	model, err := pos.LoadModel(bytes.NewReader(data), opts)
	var loadErr *pos.LoadError
	if errors.As(err, &loadErr) {
		loadErr.Path = modelPath
	}
	return model, err
}

// fileReader reads local paths and s3:// URIs. The S3 client is created on
// first use only.
type fileReader struct {
	s3 *s3client.Client
}

func newFileReader() *fileReader {
	return &fileReader{}
}

func (files *fileReader) read(path string) ([]byte, error) {
	bucket, key, ok := s3client.ParseURI(path)
	if !ok {
		return ioutil.ReadFile(path)
	}
	if files.s3 == nil {
		client, err := s3client.New()
		if err != nil {
			return nil, err
		}
		files.s3 = client
	}
	return files.s3.DownloadObject(bucket, key)
}

func (files *fileReader) close() {
	if files.s3 != nil {
		files.s3.Close()
	}
}

func serve(config Config, taggerConfig types.TaggerConfig, hmmLogger *zerolog.Logger) {
	if config.RestAPIActive {
		files := newFileReader()
		model, err := loadModel(files, config.APIModelPath, taggerConfig.ModelOptions())
		files.close()
		if err != nil {
			hmmLogger.Fatal().Err(err).Msg("Failed to load model for REST API")
		}
		apiRequest := &api.Request{
			Pipeline: pipeline.NewTaggingPipeline(model, taggerConfig),
		}
		startAPI := func() {
			defer logger.LogPanic(*hmmLogger)
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			hmmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			hmmLogger.Fatal().Err(err).Msg("REST API stopped with error")
		}
		if !config.WorkerActive {
			startAPI()
			return
		}
		go startAPI()
	}

	hmmLogger.Info().Msg("Start tagging worker")
	for {
		rmqWorker, err := worker.New(taggerConfig)
		if err != nil {
			hmmLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
		}
		if err = rmqWorker.StartWorker(); err != nil {
			hmmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
