// Package sanitize escapes dataset text before it is placed into HTML fragments.
package sanitize

import (
	"strings"

	"github.com/okian/hiddengems/internal/domain/point"
)

// htmlReplacer maps the five reserved characters to their entities.
// strings.Replacer scans left to right without re-reading its own output,
// so "&" is handled exactly once.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// HTML returns v as text safe for HTML content and quoted attributes.
// nil yields "". Non-string values are stringified with point.Stringify.
//
// Escaping is not idempotent: HTML(HTML(s)) escapes the ampersands of the
// first pass again.
func HTML(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case error:
		s = x.Error()
	default:
		s = point.Stringify(x)
	}
	return htmlReplacer.Replace(s)
}
