package golink

import (
	"fmt"
	"net/url"
	"strings"
)

// expandEnvironment is the variable scope exposed to stored long values. The
// remainder path is deliberately the only variable.
type expandEnvironment struct {
	path string
}

func (e expandEnvironment) value(name string) (string, error) {
	if name == "path" {
		return e.path, nil
	}
	return "", TemplateError{Message: fmt.Sprintf("unknown value name %q", name)}
}

// expand renders longValue against env. If rendering leaves the input
// unchanged, the long value is taken to contain no template directives at all
// and the remainder path is appended positionally instead.
func expand(longValue string, env expandEnvironment) (string, error) {
	rendered, err := renderTemplate(longValue, env)
	if err != nil {
		return "", err
	}
	if rendered != longValue {
		// The long value is a template; its output is trusted as-is even
		// when it is not a well-formed URL.
		return rendered, nil
	}
	return appendRemainder(longValue, env.path), nil
}

// appendRemainder joins the remainder path onto base. A base that parses as
// an absolute URL gets remainder appended to its path, keeping query and
// fragment intact; anything else is treated as an opaque string and joined
// with a plain "/".
func appendRemainder(base, remainder string) string {
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() {
		if remainder == "" {
			return base
		}
		return base + "/" + remainder
	}

	// Opaque absolute URLs (mailto:, etc.) have no hierarchical path to
	// extend; they round-trip unchanged.
	if u.Opaque == "" && remainder != "" {
		joined := strings.TrimRight(u.EscapedPath(), "/") + "/" + remainder
		if unescaped, uerr := url.PathUnescape(joined); uerr == nil {
			u.Path = unescaped
			u.RawPath = joined
		} else {
			u.Path = joined
			u.RawPath = ""
		}
	}
	return u.String()
}

// condFrame tracks one {{ if }} block during rendering.
type condFrame struct {
	parentEmitting bool
	taken          bool
	sawElse        bool
}

// renderTemplate renders the template syntax embedded in stored long values:
// "{ path }" substitutes the remainder path, and
// "{{ if path }}...{{ else }}...{{ endif }}" selects between its branches
// with the empty string counting as false. "\{" escapes a literal brace.
// Every malformed construct is reported as a TemplateError.
func renderTemplate(input string, env expandEnvironment) (string, error) {
	var out strings.Builder
	out.Grow(len(input))

	var stack []condFrame
	emitting := true

	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == '\\' && i+1 < len(input) && input[i+1] == '{':
			if emitting {
				out.WriteByte('{')
			}
			i += 2

		case c == '{' && i+1 < len(input) && input[i+1] == '{':
			end := strings.Index(input[i+2:], "}}")
			if end < 0 {
				return "", TemplateError{Message: "unclosed block tag"}
			}
			tag := strings.TrimSpace(input[i+2 : i+2+end])
			i += end + 4

			switch {
			case tag == "if" || strings.HasPrefix(tag, "if "):
				name := strings.TrimSpace(strings.TrimPrefix(tag, "if"))
				if name == "" {
					return "", TemplateError{Message: "if block missing value name"}
				}
				val, err := env.value(name)
				if err != nil {
					return "", err
				}
				frame := condFrame{parentEmitting: emitting, taken: val != ""}
				stack = append(stack, frame)
				emitting = emitting && frame.taken

			case tag == "else":
				if len(stack) == 0 {
					return "", TemplateError{Message: "else outside of if block"}
				}
				frame := &stack[len(stack)-1]
				if frame.sawElse {
					return "", TemplateError{Message: "duplicate else in if block"}
				}
				frame.sawElse = true
				emitting = frame.parentEmitting && !frame.taken

			case tag == "endif":
				if len(stack) == 0 {
					return "", TemplateError{Message: "endif outside of if block"}
				}
				emitting = stack[len(stack)-1].parentEmitting
				stack = stack[:len(stack)-1]

			default:
				return "", TemplateError{Message: fmt.Sprintf("unknown block tag %q", tag)}
			}

		case c == '{':
			end := strings.IndexByte(input[i+1:], '}')
			if end < 0 {
				return "", TemplateError{Message: "unclosed value tag"}
			}
			name := strings.TrimSpace(input[i+1 : i+1+end])
			i += end + 2

			val, err := env.value(name)
			if err != nil {
				return "", err
			}
			if emitting {
				out.WriteString(val)
			}

		default:
			if emitting {
				out.WriteByte(c)
			}
			i++
		}
	}

	if len(stack) > 0 {
		return "", TemplateError{Message: "unclosed if block"}
	}
	return out.String(), nil
}
