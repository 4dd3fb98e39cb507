package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey identifies the negotiated locale in a request context.
var LocaleKey = localeContextKey{}

var supportedLocales = []language.Tag{
	language.English,
	language.Indonesian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// I18N negotiates the UI locale for each request. An explicit X-Locale header
// wins, then Accept-Language matching, then the configured default.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	for _, header := range []string{r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")} {
		if header == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(tags) == 0 {
			continue
		}
		// Match falls back to the first supported tag; only trust it when
		// the request actually expressed a supported preference.
		if tag, _, conf := localeMatcher.Match(tags...); conf > language.No {
			base, _ := tag.Base()
			return base.String()
		}
	}
	if fallback != "" {
		return normalizeLocale(fallback)
	}
	return "en"
}

func normalizeLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	matched, _, _ := localeMatcher.Match(tag)
	base, _ := matched.Base()
	return base.String()
}

// LocaleFromContext returns the negotiated locale, defaulting to English.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}
