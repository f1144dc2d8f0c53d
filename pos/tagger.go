package pos

// Tagger assigns one tag per token, or returns an error wrapping ErrNoPath.
type Tagger func(tokens []string) ([]string, error)

func NewTagger(model *Model) Tagger {
	return func(tokens []string) ([]string, error) {
		end, trellis, err := Decode(model, tokens)
		if err != nil {
			return nil, err
		}
		return Backtrack(trellis, len(tokens), end), nil
	}
}
