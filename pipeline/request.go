package pipeline

// Request carries one batch of sentences, one per line of Text.
type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}
