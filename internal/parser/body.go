package parser

import (
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/jsonvalue"
)

// ExtractRequestBody returns the request body as an ordered JSON value, or
// nil if the request carried no body.
//
// JSON bodies are parsed; unparseable JSON becomes {"raw": text}. Form
// bodies become a name->value object built from the archived params, or from
// the body text when no params were archived. Any other body becomes
// {"raw": text}.
func ExtractRequestBody(pd *har.PostData) any {
	if pd == nil || pd.Text == "" {
		return nil
	}

	mime := strings.ToLower(pd.MimeType)

	switch {
	case strings.Contains(mime, "json"):
		v, err := jsonvalue.DecodeString(pd.Text)
		if err != nil {
			return rawBody(pd.Text)
		}
		return v
	case strings.Contains(mime, "form"):
		return formBody(pd)
	default:
		return rawBody(pd.Text)
	}
}

func rawBody(text string) *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	obj.Set("raw", text)
	return obj
}

func formBody(pd *har.PostData) *jsonvalue.Object {
	obj := jsonvalue.NewObject()

	if len(pd.Params) > 0 {
		for _, p := range pd.Params {
			obj.Set(p.Name, p.Value)
		}
		return obj
	}

	for _, pair := range splitQuery(pd.Text) {
		obj.Set(pair.name, pair.value)
	}
	return obj
}

// ExtractResponseExample parses a JSON response body and truncates it.
// Non-JSON or unparseable bodies yield nil.
func ExtractResponseExample(mimeType, text string, limits Limits) any {
	if text == "" || !strings.Contains(strings.ToLower(mimeType), "json") {
		return nil
	}

	v, err := jsonvalue.DecodeString(text)
	if err != nil {
		return nil
	}
	return Truncate(v, limits)
}
