package view

import (
	"bytes"
	"html/template"
	"time"
)

// MetadataPageData provides the dynamic fields for the shortlink detail page
// served for "go/shortlink+" requests from a browser.
type MetadataPageData struct {
	Shortlink   string
	LongValue   string
	Description string
	Disabled    bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	Clicks      int64
	LastClick   *time.Time
}

var metadataPageTmpl = template.Must(template.New("metadata_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>go/{{.Shortlink}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(560px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.destination {
			margin: 24px 0;
			padding: 18px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			word-break: break-all;
		}
		.destination-label {
			font-size: 0.82rem;
			text-transform: uppercase;
			letter-spacing: 0.08em;
			color: var(--muted);
			margin-bottom: 8px;
		}
		dl {
			display: grid;
			grid-template-columns: auto 1fr;
			gap: 8px 20px;
			margin: 0;
			font-size: 0.92rem;
		}
		dt { color: var(--muted); }
		dd { margin: 0; }
		.disabled { color: #f87171; }
	</style>
</head>
<body>
	<div class="card">
		<h1>go/{{.Shortlink}}</h1>
		{{if .Description}}<p>{{.Description}}</p>{{end}}

		<div class="destination">
			<div class="destination-label">Stored long value</div>
			<div>{{.LongValue}}</div>
		</div>

		<dl>
			<dt>Clicks</dt><dd>{{.Clicks}}</dd>
			{{if .LastClick}}<dt>Last click</dt><dd>{{.LastClick.Format "2006-01-02 15:04 MST"}}</dd>{{end}}
			<dt>Created</dt><dd>{{.CreatedAt.Format "2006-01-02 15:04 MST"}}</dd>
			{{if .ExpiresAt}}<dt>Expires</dt><dd>{{.ExpiresAt.Format "2006-01-02 15:04 MST"}}</dd>{{end}}
			{{if .Disabled}}<dt>Status</dt><dd class="disabled">disabled</dd>{{end}}
		</dl>
	</div>
</body>
</html>
`))

// RenderMetadataPage expands the shortlink detail template with the provided data.
func RenderMetadataPage(data MetadataPageData) (string, error) {
	var buf bytes.Buffer
	if err := metadataPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
