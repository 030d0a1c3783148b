package driven

// Segmenter splits text into words. Implementations must be deterministic
// and safe for concurrent use.
type Segmenter interface {
	Cut(text string) []string
}
