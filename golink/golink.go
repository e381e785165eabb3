// Package golink resolves short paths ("shortlinks") into fully expanded
// destination URLs. The caller supplies the lookup that maps a normalized
// shortlink to its stored long value; this package owns only the resolution
// algorithm:
//
//   - input normalization, so that /My-Service, /myservice and /MY%20SERVICE
//     all hit the same lookup key,
//   - metadata-request detection via a trailing '+' on the request path,
//   - template expansion of the stored long value against the remainder path,
//   - positional path appending when the long value carries no template
//     directives, whether or not it is itself a valid URL.
//
// Storage, HTTP handling and click analytics are external responsibilities.
package golink

import (
	"context"
	"net/url"
	"strings"
)

// LookupFunc maps a normalized shortlink to its stored long value. The
// boolean reports whether a mapping exists.
type LookupFunc func(short string) (string, bool)

// ContextLookupFunc is the context-aware form of LookupFunc, for lookups
// backed by databases or network calls. The lookup call is the only blocking
// point in the resolution algorithm.
type ContextLookupFunc func(ctx context.Context, short string) (string, bool)

// syntheticBase anchors relative inputs so bare tokens ("foo"), absolute
// paths ("/foo/bar") and full URLs are all accepted uniformly.
var syntheticBase = &url.URL{Scheme: "https", Host: "go", Path: "/"}

// NormalizeShortlink extracts the first path segment of input and normalizes
// it: ASCII lowercase, then hyphens, "%20" sequences and spaces removed.
//
// Callers creating new shortlinks should store the normalized form so that
// storage keys line up with what Resolve computes at request time:
// "My-Service", "my-service" and "myservice" all normalize to "myservice".
func NormalizeShortlink(input string) string {
	first, _, _ := strings.Cut(strings.TrimLeft(input, "/"), "/")
	return normalizeSegment(first)
}

func normalizeSegment(segment string) string {
	s := asciiLower(segment)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "%20", "")
	return strings.ReplaceAll(s, " ", "")
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

type parsedInput struct {
	short             string
	remainder         string
	isMetadataRequest bool
}

func parseInput(input string) (parsedInput, error) {
	u, err := url.Parse(input)
	if err != nil || !u.IsAbs() {
		u, err = syntheticBase.Parse(input)
		if err != nil {
			return parsedInput{}, ErrInvalidInput
		}
	}
	if u.Opaque != "" {
		// Opaque URLs like "a:3gb" have no path segments to resolve.
		return parsedInput{}, ErrInvalidInput
	}

	// Work on the escaped path so "%20" survives into normalization and the
	// remainder keeps its original spelling.
	path := u.EscapedPath()
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	short := normalizeSegment(segments[0])
	if short == "" {
		return parsedInput{}, ErrInvalidInput
	}

	return parsedInput{
		short:             short,
		remainder:         strings.Join(segments[1:], "/"),
		isMetadataRequest: strings.HasSuffix(path, "+"),
	}, nil
}

// Resolve parses input, looks up the normalized shortlink through lookup and
// returns either a redirect resolution carrying the expanded URL or a
// metadata resolution when the request path ends with '+'.
//
// Errors form a closed set: ErrInvalidInput for unusable input, NotFoundError
// when lookup has no mapping, and TemplateError when the stored long value
// has malformed template syntax.
func Resolve(input string, lookup LookupFunc) (Resolution, error) {
	parsed, err := parseInput(input)
	if err != nil {
		return Resolution{}, err
	}

	if parsed.isMetadataRequest {
		return Resolution{
			Kind:      KindMetadata,
			Shortlink: strings.TrimRight(parsed.short, "+"),
		}, nil
	}

	longValue, ok := lookup(parsed.short)
	if !ok {
		return Resolution{}, NotFoundError{Shortlink: parsed.short}
	}

	expanded, err := expand(longValue, expandEnvironment{path: parsed.remainder})
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Kind:      KindRedirect,
		Shortlink: parsed.short,
		URL:       expanded,
	}, nil
}

// ResolveContext is Resolve with a context-aware lookup. The algorithm is
// identical; only the way the lookup result is obtained differs.
func ResolveContext(ctx context.Context, input string, lookup ContextLookupFunc) (Resolution, error) {
	return Resolve(input, func(short string) (string, bool) {
		return lookup(ctx, short)
	})
}

// CheckTemplate compiles and renders longValue against a probe environment
// without resolving anything. It lets link managers reject malformed template
// syntax at write time instead of surfacing a TemplateError to end users.
func CheckTemplate(longValue string) error {
	_, err := renderTemplate(longValue, expandEnvironment{path: "probe"})
	return err
}
