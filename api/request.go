package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"text2phenotype.com/hmmtag/pipeline"
)

const (
	TidHeader  = "X-Tid"
	defaultTid = "api"
)

type Request struct {
	Pipeline pipeline.Pipeline
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Status: status})
}

// ProcessData tags the sentence lines of a POST body and answers with the
// tagger output: the two count lines followed by one line per sentence.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	tid := r.Header.Get(TidHeader)
	if tid == "" {
		tid = defaultTid
	}
	logger := makeRequestLogger(r, tid)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		writeError(w, http.StatusMethodNotAllowed, "only POST is allowed")
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	request := pipeline.Request{
		Tid:  tid,
		Text: string(msg),
	}
	logger.Info().Msg("Starting pipeline for request from API")
	resp, ok := <-req.Pipeline(r.Context(), request)
	if !ok || resp.Err != nil {
		logger.Err(resp.Err).Int("status", http.StatusServiceUnavailable).Msg("Tagging did not finish")
		writeError(w, http.StatusServiceUnavailable, "tagging did not finish")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err = resp.WriteTo(w); err != nil {
		logger.Err(err).Msg("Failed to write response")
		return
	}
	logger.Info().
		Int("status", http.StatusOK).
		Int("sentences", resp.Stats.Sentences).
		Int("no_path", resp.Stats.NoPath).
		Msg("Finished processing request")
}
