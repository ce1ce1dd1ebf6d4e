package scope

// Rules holds the lookup tables the classifier matches against. All entries
// are lower-case; paths are lower-cased before matching.
type Rules struct {
	StaticExtensions []string
	StaticDirs       []string
	APISegments      []string
	JSONMediaTypes   []string
}

// Reason explains a classification result.
type Reason string

const (
	ReasonRelevant   Reason = "relevant"
	ReasonStatic     Reason = "static"
	ReasonNotAPI     Reason = "not_api"
	ReasonInvalidURL Reason = "invalid_url"
)
