package har

// HAR 1.2 types. Only the fields the pipeline reads are declared; everything
// else in the archive is ignored on decode.

// HAR is the top-level HAR structure.
type HAR struct {
	Log Log `json:"log"`
}

// Log holds the HAR log metadata and entries.
type Log struct {
	Version string  `json:"version"`
	Creator Creator `json:"creator"`
	Entries []Entry `json:"entries"`
}

// Creator identifies the tool that produced the archive.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Entry is a single HTTP request/response pair.
type Entry struct {
	StartedDateTime string   `json:"startedDateTime"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
}

// Request is the captured HTTP request.
type Request struct {
	Method   string    `json:"method"`
	URL      string    `json:"url"`
	Headers  []Header  `json:"headers"`
	PostData *PostData `json:"postData,omitempty"`
}

// Response is the captured HTTP response.
type Response struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers"`
	Content Content  `json:"content"`
}

// Content is the response body.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// PostData is the request body.
type PostData struct {
	MimeType string  `json:"mimeType"`
	Text     string  `json:"text"`
	Params   []Param `json:"params,omitempty"`
}

// Param is a posted form field.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Header is a single HTTP header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
