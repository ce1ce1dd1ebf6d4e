// Package parser turns raw request data into model pieces: parameterized path
// templates, query parameters, request bodies and truncated response examples.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/model"
)

var uuidRe = regexp.MustCompile(`(?i)/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

// NormalizePath replaces identifier segments with named placeholders and
// returns the template together with its path parameters in path order.
//
// UUIDs are replaced first: the first becomes {id}, later ones {uuid_1},
// {uuid_2}, ... Then every purely numeric segment is replaced: the first
// becomes {id}, later ones {id_1}, {id_2}, ... A name already taken by the
// UUID pass moves to the next free id_<k>.
func NormalizePath(path string) (string, []model.Parameter) {
	var params []model.Parameter
	used := make(map[string]bool)

	normalized, uuidParams := replaceUUIDs(path, used)
	params = append(params, uuidParams...)

	normalized, numericParams := replaceNumeric(normalized, used)
	params = append(params, numericParams...)

	return normalized, orderByPosition(normalized, params)
}

func replaceUUIDs(path string, used map[string]bool) (string, []model.Parameter) {
	matches := uuidRe.FindAllStringSubmatchIndex(path, -1)
	if len(matches) == 0 {
		return path, nil
	}

	var b strings.Builder
	params := make([]model.Parameter, 0, len(matches))
	last := 0

	for i, m := range matches {
		name := "id"
		if i > 0 {
			name = "uuid_" + strconv.Itoa(i)
		}
		used[name] = true

		b.WriteString(path[last:m[0]])
		b.WriteString("/{" + name + "}")
		last = m[1]

		params = append(params, model.Parameter{
			Name:        name,
			Class:       model.PathParam,
			Example:     path[m[2]:m[3]],
			Required:    true,
			Description: "UUID identifier",
		})
	}
	b.WriteString(path[last:])

	return b.String(), params
}

func replaceNumeric(path string, used map[string]bool) (string, []model.Parameter) {
	segments := strings.Split(path, "/")
	var params []model.Parameter

	// segments[0] precedes the first '/', so it is never an identifier.
	for i := 1; i < len(segments); i++ {
		if !isDigits(segments[i]) {
			continue
		}

		name := "id"
		if len(params) > 0 {
			name = "id_" + strconv.Itoa(len(params))
		}
		for k := 1; used[name]; k++ {
			name = "id_" + strconv.Itoa(k)
		}
		used[name] = true

		params = append(params, model.Parameter{
			Name:        name,
			Class:       model.PathParam,
			Example:     segments[i],
			Required:    true,
			Description: "Numeric identifier",
		})
		segments[i] = "{" + name + "}"
	}

	return strings.Join(segments, "/"), params
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// orderByPosition sorts parameters by where their placeholder appears.
func orderByPosition(path string, params []model.Parameter) []model.Parameter {
	if len(params) < 2 {
		return params
	}

	ordered := make([]model.Parameter, 0, len(params))
	taken := make([]bool, len(params))
	for _, name := range PlaceholderNames(path) {
		for i, p := range params {
			if !taken[i] && p.Name == name {
				ordered = append(ordered, p)
				taken[i] = true
				break
			}
		}
	}
	for i, p := range params {
		if !taken[i] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// PlaceholderNames returns the {name} placeholders of a template in order.
func PlaceholderNames(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
