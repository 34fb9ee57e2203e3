package service

import (
	_ "embed"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/okian/hiddengems/internal/domain/sanitize"
	"github.com/okian/hiddengems/internal/domain/view"
)

// Dialog titles.
const (
	ErrorTitle  = "Eroare"
	AboutTitle  = "Despre"
	SubmitTitle = "Înscriere / Trimitere lucrări"
)

// DefaultSubmitURL is the contest submission form.
const DefaultSubmitURL = "https://forms.gle/FskENUpS3Z62T45D9"

// placeholderSubmitURL marks a form link that was never configured.
const placeholderSubmitURL = "https://example.com"

const submitFallback = `<p>Setează linkul către formular / încărcare în <code>submit_url</code>.</p>`

//go:embed about.md
var aboutMarkdown string

// ErrorModal renders the body of the load error dialog. The detail is
// escaped once.
func ErrorModal(err error) string {
	return `<p>Nu am putut încărca datele: <code>` + sanitize.HTML(err) + `</code></p>`
}

// RenderMarkdown renders a markdown document as an HTML fragment.
func RenderMarkdown(md string) string {
	extensions := parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank | html.SkipHTML
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return string(markdown.Render(doc, renderer))
}

// About returns the about dialog body.
func (s *Service) About() string {
	src := "data/monuments.geojson"
	if s.source != nil {
		src = strings.ReplaceAll(s.source.String(), "`", "")
	}
	return RenderMarkdown(strings.ReplaceAll(s.aboutMD, "{{source}}", src))
}

// ShowAbout shows the about dialog on page.
func (s *Service) ShowAbout(page view.Page) {
	page.ShowModal(AboutTitle, s.About())
}

// SubmitURL returns the configured submission form, or "" when it is unset
// or still the placeholder.
func (s *Service) SubmitURL() string {
	if s.submitURL == "" || s.submitURL == placeholderSubmitURL {
		return ""
	}
	return s.submitURL
}

// Submit returns the form the client should open in a new tab without
// opener access. When no form is configured it shows instructions on page
// instead and returns "".
func (s *Service) Submit(page view.Page) string {
	if u := s.SubmitURL(); u != "" {
		return u
	}
	page.ShowModal(SubmitTitle, submitFallback)
	return ""
}
