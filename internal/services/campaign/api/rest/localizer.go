package rest

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/adventuring.party/internal/services/notifications/render"
)

var supportedLanguages = language.NewMatcher([]language.Tag{
	language.English,
	language.BrazilianPortuguese,
})

// requestLocalizer picks a message printer from the Accept-Language header,
// falling back to English.
func requestLocalizer(r *http.Request) render.Localizer {
	accept := ""
	if r != nil {
		accept = r.Header.Get("Accept-Language")
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	tag, _, _ := supportedLanguages.Match(tags...)
	return message.NewPrinter(tag)
}
