package golink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prsTemplate = "https://github.com/pulls?q=is:open+is:pr+review-requested:" +
	"{{ if path }}{ path }{{ else }}@me{{ endif }}+archived:false"

func testLookup(short string) (string, bool) {
	switch short {
	case "test":
		return "http://example.com/", true
	case "test2":
		return "http://example.com/test.html?a=b&c[]=d", true
	case "prs":
		return prsTemplate, true
	case "abcd":
		return "efgh", true
	case "broken":
		return "https://example.com/{{ if path }}oops", true
	}
	return "", false
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Resolution
	}{
		{
			name:  "leading slash",
			input: "/test",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "bare token",
			input: "test",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "full url",
			input: "https://jil.im/test",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "case insensitive",
			input: "/TEST",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "hyphens ignored",
			input: "/t-est",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "spaces ignored",
			input: "/t est",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/"},
		},
		{
			name:  "remainder appended to path",
			input: "/test/a/b/c",
			want:  Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/a/b/c"},
		},
		{
			name:  "remainder appended before query string",
			input: "/test2/a/b/c",
			want: Resolution{
				Kind:      KindRedirect,
				Shortlink: "test2",
				URL:       "http://example.com/test.html/a/b/c?a=b&c[]=d",
			},
		},
		{
			name:  "long value without template preserved",
			input: "/test2",
			want: Resolution{
				Kind:      KindRedirect,
				Shortlink: "test2",
				URL:       "http://example.com/test.html?a=b&c[]=d",
			},
		},
		{
			name:  "opaque long value passes through",
			input: "/abcd",
			want:  Resolution{Kind: KindRedirect, Shortlink: "abcd", URL: "efgh"},
		},
		{
			name:  "opaque long value concatenates remainder",
			input: "/abcd/a/b/c",
			want:  Resolution{Kind: KindRedirect, Shortlink: "abcd", URL: "efgh/a/b/c"},
		},
		{
			name:  "template substitutes remainder path",
			input: "/prs/jameslittle230",
			want: Resolution{
				Kind:      KindRedirect,
				Shortlink: "prs",
				URL:       "https://github.com/pulls?q=is:open+is:pr+review-requested:jameslittle230+archived:false",
			},
		},
		{
			name:  "template fallback on empty remainder",
			input: "/prs",
			want: Resolution{
				Kind:      KindRedirect,
				Shortlink: "prs",
				URL:       "https://github.com/pulls?q=is:open+is:pr+review-requested:@me+archived:false",
			},
		},
		{
			name:  "trailing slash means empty remainder",
			input: "/prs/",
			want: Resolution{
				Kind:      KindRedirect,
				Shortlink: "prs",
				URL:       "https://github.com/pulls?q=is:open+is:pr+review-requested:@me+archived:false",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, testLookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMetadataRequest(t *testing.T) {
	got, err := Resolve("/test+", testLookup)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Kind: KindMetadata, Shortlink: "test"}, got)

	// Normalization applies before the marker is stripped.
	got, err = Resolve("/tEs-t+", testLookup)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Kind: KindMetadata, Shortlink: "test"}, got)
}

func TestResolveMetadataRequestSkipsLookup(t *testing.T) {
	called := false
	_, err := Resolve("/anything+", func(string) (string, bool) {
		called = true
		return "", false
	})
	require.NoError(t, err)
	assert.False(t, called, "metadata requests must not invoke the lookup")
}

func TestResolveInvalidInput(t *testing.T) {
	for _, input := range []string{"", "  \n", "a:3gb", "/", "///"} {
		t.Run(input, func(t *testing.T) {
			_, err := Resolve(input, testLookup)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve("/nosuchlink", testLookup)

	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nosuchlink", nf.Shortlink)
}

func TestResolveTemplateError(t *testing.T) {
	_, err := Resolve("/broken", testLookup)

	var te TemplateError
	require.ErrorAs(t, err, &te)
	assert.NotEmpty(t, te.Message)
}

func TestResolveContext(t *testing.T) {
	ctxLookup := func(ctx context.Context, short string) (string, bool) {
		return testLookup(short)
	}

	got, err := ResolveContext(context.Background(), "/test/a/b/c", ctxLookup)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Kind: KindRedirect, Shortlink: "test", URL: "http://example.com/a/b/c"}, got)

	got, err = ResolveContext(context.Background(), "/prs/jameslittle230", ctxLookup)
	require.NoError(t, err)
	assert.Equal(t, "prs", got.Shortlink)
	assert.Equal(t, "https://github.com/pulls?q=is:open+is:pr+review-requested:jameslittle230+archived:false", got.URL)

	got, err = ResolveContext(context.Background(), "/test+", ctxLookup)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Kind: KindMetadata, Shortlink: "test"}, got)

	_, err = ResolveContext(context.Background(), "/nosuchlink", ctxLookup)
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nosuchlink", nf.Shortlink)
}

func TestResolveContextPassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	_, err := ResolveContext(ctx, "/test", func(got context.Context, short string) (string, bool) {
		assert.Equal(t, "marker", got.Value(ctxKey{}))
		return testLookup(short)
	})
	require.NoError(t, err)
}

func TestNormalizeShortlink(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My-Service", "myservice"},
		{"myservice", "myservice"},
		{"MY SERVICE", "myservice"},
		{"MY%20SERVICE", "myservice"},
		{"FOO", "foo"},
		{"foo/bar", "foo"},
		{"/foo/bar/baz", "foo"},
		{"My-Service/docs", "myservice"},
		{"", ""},
		{"///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeShortlink(tt.input))
		})
	}
}

func TestCheckTemplate(t *testing.T) {
	require.NoError(t, CheckTemplate("http://example.com/"))
	require.NoError(t, CheckTemplate(prsTemplate))
	require.NoError(t, CheckTemplate("plain opaque value"))

	err := CheckTemplate("https://example.com/{ user }")
	var te TemplateError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "user")

	assert.Error(t, CheckTemplate("https://example.com/{{ if path }}no end"))
}

func TestResolveErrorsAreComparable(t *testing.T) {
	// The closed error set is plain data so callers can match variants
	// exhaustively when mapping to status codes.
	assert.True(t, errors.Is(NotFoundError{Shortlink: "x"}, NotFoundError{Shortlink: "x"}))
	assert.Equal(t, TemplateError{Message: "m"}, TemplateError{Message: "m"})
}
