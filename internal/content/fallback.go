package content

import "strings"

// Fallback is a rendered template and where it came from.
type Fallback struct {
	ContentType string
	Template    string
	Text        string
}

// SelectFallback picks a content type and a template uniformly, then fills
// each placeholder from the replacement table. It never fails and does not
// check length.
func (l *Library) SelectFallback(rnd Rand) Fallback {
	ct := l.ContentTypes[rnd.Intn(len(l.ContentTypes))]
	tpl := ct.Templates[rnd.Intn(len(ct.Templates))]
	return Fallback{
		ContentType: ct.Name,
		Template:    tpl,
		Text:        l.Render(tpl, rnd),
	}
}

// Render substitutes the first {name} token for every replacement present in
// the template, walking the table in order.
func (l *Library) Render(tpl string, rnd Rand) string {
	out := tpl
	for _, r := range l.Replacements {
		token := "{" + r.Name + "}"
		if !strings.Contains(out, token) {
			continue
		}
		out = strings.Replace(out, token, r.Options[rnd.Intn(len(r.Options))], 1)
	}
	return out
}
