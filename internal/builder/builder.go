// Package builder runs the inference half of the pipeline: it classifies
// trace records, turns relevant ones into endpoint observations, merges them
// and produces the immutable service model.
package builder

import (
	"context"
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/auth"
	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/metrics"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/parser"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
	"github.com/PentesterFlow/mcpcreator/internal/scope"
	"github.com/PentesterFlow/mcpcreator/internal/state"
)

// UnknownService names a service when no host could be determined.
const UnknownService = "unknown"

// Options configures a Builder. Zero fields get defaults; a nil Redactor
// disables redaction.
type Options struct {
	Name       string
	Limits     parser.Limits
	Classifier *scope.Classifier
	Detector   *auth.Detector
	Redactor   *redact.Engine
	Logger     *logger.Logger
	Metrics    *metrics.Collector
}

// Builder turns trace records into a service model.
type Builder struct {
	opts Options
	log  *logger.Logger
}

// Result is the output of one Build.
type Result struct {
	Model *model.ServiceModel
	Stats state.Stats
}

// New creates a builder.
func New(opts Options) *Builder {
	if opts.Limits == (parser.Limits{}) {
		opts.Limits = parser.DefaultLimits()
	}
	if opts.Classifier == nil {
		opts.Classifier = scope.NewDefaultClassifier()
	}
	if opts.Detector == nil {
		opts.Detector = auth.NewDetector()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Builder{
		opts: opts,
		log:  opts.Logger.WithComponent("builder"),
	}
}

// run holds the mutable state of one Build call.
type run struct {
	agg      *state.Aggregator
	stats    state.Stats
	hosts    []string
	baseURLs map[string]string
	pages    []page
}

type page struct {
	host string
	html string
}

// Build processes records in order and returns the service model. It stops
// early only if ctx is cancelled.
func (b *Builder) Build(ctx context.Context, records []har.Record) (*Result, error) {
	start := time.Now()
	r := &run{
		agg:      state.NewAggregator(len(records)),
		baseURLs: make(map[string]string),
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.observe(r, &records[i])
	}

	m := b.assemble(r)

	r.stats.Endpoints = r.agg.Len()
	r.stats.Merges = r.agg.Merges()
	r.stats.AuthPatterns = r.agg.AuthCount()

	b.opts.Metrics.ObserveStage("infer", time.Since(start))
	b.log.StageEvent("classify", r.stats.RecordsRelevant)
	b.log.StageEvent("aggregate", r.stats.Endpoints)

	return &Result{Model: m, Stats: r.stats}, nil
}

func (b *Builder) observe(r *run, rec *har.Record) {
	r.stats.RecordsSeen++
	b.opts.Metrics.RecordRecord()

	reason := b.opts.Classifier.Classify(rec)
	if reason != scope.ReasonRelevant {
		r.stats.Skip(string(reason))
		b.opts.Metrics.RecordSkipped(string(reason))
		b.log.RecordSkipped(rec.URL, string(reason))
		if reason != scope.ReasonInvalidURL && parser.IsHTML(rec.ResponseMime) && rec.ResponseText != "" {
			r.pages = append(r.pages, page{host: NormalizeHost(rec.Host()), html: rec.ResponseText})
		}
		return
	}
	r.stats.RecordsRelevant++

	host := NormalizeHost(rec.Host())
	if _, ok := r.baseURLs[host]; !ok {
		r.hosts = append(r.hosts, host)
		r.baseURLs[host] = rec.BaseURL()
	}

	ep := b.endpoint(r, rec)
	if r.agg.Observe(ep) {
		b.opts.Metrics.RecordMerge()
	} else {
		b.opts.Metrics.RecordEndpoint()
	}

	if n := r.agg.AddAuth(b.opts.Detector.Detect(rec)...); n > 0 {
		b.opts.Metrics.RecordAuthPatterns(n)
	}
}

// endpoint builds one endpoint observation with every example masked. A
// repeat observation of a known endpoint only carries its query parameters,
// since the first observation fixes everything else.
func (b *Builder) endpoint(r *run, rec *har.Record) model.Endpoint {
	path, pathParams := parser.NormalizePath(rec.Path())

	if r.agg.Seen(model.EndpointKey(rec.Method, rec.BaseURL(), path)) {
		ep := model.Endpoint{
			Method:      rec.Method,
			Path:        path,
			BaseURL:     rec.BaseURL(),
			QueryParams: parser.ExtractQueryParams(rec.RawQuery()),
		}
		if b.opts.Redactor != nil {
			r.stats.Redactions += b.redact(&ep)
		}
		return ep
	}

	headers := parser.FilterHeaders(rec.RequestHeaders, auth.IsCredentialHeader)
	ep := model.Endpoint{
		Method:          rec.Method,
		Path:            path,
		BaseURL:         rec.BaseURL(),
		PathParams:      pathParams,
		QueryParams:     parser.ExtractQueryParams(rec.RawQuery()),
		Headers:         headers,
		ContentType:     parser.ContentType(headers),
		RequestBody:     parser.ExtractRequestBody(rec.PostData),
		ResponseExample: parser.ExtractResponseExample(responseMime(rec), rec.ResponseText, b.opts.Limits),
		ResponseStatus:  rec.Status,
	}

	if b.opts.Redactor != nil {
		r.stats.Redactions += b.redact(&ep)
	}
	return ep
}

func (b *Builder) redact(ep *model.Endpoint) int {
	engine := b.opts.Redactor
	total := 0

	for i := range ep.QueryParams {
		var n int
		ep.QueryParams[i].Example, n = engine.Param(ep.QueryParams[i].Name, ep.QueryParams[i].Example)
		total += n
	}
	for i := range ep.Headers {
		v, n := engine.Param(ep.Headers[i].Name, ep.Headers[i].Value)
		ep.Headers[i].Value, _ = v.(string)
		total += n
	}
	if ep.RequestBody != nil {
		var n int
		ep.RequestBody, n = engine.Value(ep.RequestBody)
		total += n
	}
	if ep.ResponseExample != nil {
		var n int
		ep.ResponseExample, n = engine.Value(ep.ResponseExample)
		total += n
	}

	if total > 0 {
		b.opts.Metrics.RecordRedactions(total)
	}
	return total
}

// responseMime prefers the archived content mime type and falls back to the
// response Content-Type header.
func responseMime(rec *har.Record) string {
	if rec.ResponseMime != "" {
		return rec.ResponseMime
	}
	return rec.ResponseContentType()
}

func (b *Builder) assemble(r *run) *model.ServiceModel {
	host := PickServiceHost(r.hosts)

	name := b.opts.Name
	if name == "" {
		name = model.HostToName(host)
	}
	if name == "" {
		name = UnknownService
	}

	m := &model.ServiceModel{
		Name:         name,
		BaseURL:      r.baseURLs[host],
		Description:  "API service for " + name,
		AuthPatterns: r.agg.AuthPatterns(),
		Endpoints:    r.agg.Endpoints(),
	}
	if m.AuthPatterns == nil {
		m.AuthPatterns = []model.AuthPattern{}
	}

	if title := b.siteTitle(r.pages, host); title != "" {
		m.Description += " (" + title + ")"
	}

	return m
}

// siteTitle returns the name of the first HTML page served by the service
// host or by a sibling host deriving the same service name.
func (b *Builder) siteTitle(pages []page, host string) string {
	if host == "" {
		return ""
	}
	want := model.HostToName(host)

	for _, p := range pages {
		if p.host != host && model.HostToName(p.host) != want {
			continue
		}
		info, err := parser.ParseHTML(p.html)
		if err != nil {
			b.log.WithError(err).Debug("Skipping unparseable page")
			continue
		}
		if name := info.Name(); name != "" {
			return name
		}
	}
	return ""
}
