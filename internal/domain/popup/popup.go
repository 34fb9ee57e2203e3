// Package popup renders the HTML fragment bound to each monument marker.
package popup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/okian/hiddengems/internal/domain/sanitize"
)

// Fixed fragment parts.
const (
	DefaultName     = "Monument"
	EmbedBaseURL    = "https://www.youtube-nocookie.com/embed/"
	MapsSearchURL   = "https://www.google.com/maps?q="
	SearchSuffix    = " Arad"
	VideoPermission = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"
	NoVideoMessage  = "Nu există video pentru acest punct încă."
	VideoTitle      = "Clip câștigător"
	MapsLinkText    = "Caută pe Google Maps"
	// MaxWidth is the popup width hint in pixels handed to the map.
	MaxWidth = 420
)

// metaField is one labelled entry of the metadata line.
type metaField struct {
	label string
	value func(point.Properties) string
}

// metaFields lists the metadata entries in display order.
var metaFields = []metaField{
	{"Categorie", point.Properties.Category},
	{"An", point.Properties.Year},
	{"Premiu", point.Properties.Prize},
	{"Școala", point.Properties.School},
}

// Render builds the popup fragment for props.
func Render(props point.Properties) string {
	rawName := props.Name()
	if rawName == "" {
		rawName = DefaultName
	}

	var sb strings.Builder
	sb.WriteString(`<div class="popup">`)
	fmt.Fprintf(&sb, `<h3>%s</h3>`, sanitize.HTML(rawName))
	fmt.Fprintf(&sb, `<div class="meta">%s</div>`, metaLine(props))
	if notes := props.Notes(); notes != "" {
		fmt.Fprintf(&sb, `<div class="desc">%s</div>`, sanitize.HTML(notes))
	}
	sb.WriteString(video(props.YouTubeID()))
	fmt.Fprintf(&sb, `<div class="linkrow"><a href="%s" target="_blank" rel="noopener">%s</a></div>`,
		sanitize.HTML(SearchURL(rawName)), MapsLinkText)
	sb.WriteString(`</div>`)
	return sb.String()
}

// metaLine joins the present metadata fields as labelled spans.
func metaLine(props point.Properties) string {
	parts := make([]string, 0, len(metaFields))
	for _, f := range metaFields {
		v := f.value(props)
		if v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(`<span><b>%s:</b> %s</span>`, f.label, sanitize.HTML(v)))
	}
	return strings.Join(parts, " ")
}

func video(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Sprintf(`<div class="desc"><i>%s</i></div>`, NoVideoMessage)
	}
	return fmt.Sprintf(`<iframe class="video" src="%s" title="%s" loading="lazy" allow="%s" allowfullscreen></iframe>`,
		sanitize.HTML(EmbedURL(id)), VideoTitle, VideoPermission)
}

// EmbedURL returns the privacy-enhanced embed URL for a video id.
func EmbedURL(id string) string {
	return EmbedBaseURL + escapeComponent(strings.TrimSpace(id))
}

// SearchURL returns the map search URL for "<name> Arad".
func SearchURL(name string) string {
	return MapsSearchURL + escapeComponent(name+SearchSuffix)
}

// escapeComponent escapes s as a single URL component with spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
