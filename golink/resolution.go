package golink

// Kind discriminates the two possible outcomes of a successful resolution.
type Kind int

const (
	// KindRedirect asks the caller to redirect to Resolution.URL.
	KindRedirect Kind = iota
	// KindMetadata asks the caller to serve information about the shortlink
	// itself. Triggered by a trailing '+' on the request path.
	KindMetadata
)

// Resolution is the success value of Resolve and ResolveContext. It always
// carries the normalized shortlink so callers can record click analytics
// without re-normalizing the input themselves.
type Resolution struct {
	Kind      Kind
	Shortlink string
	// URL is the fully expanded destination. Empty for metadata requests.
	URL string
}
