package i18n

import "net/http"

// Middleware injects a request-scoped localizer into every request context.
// The browser's Accept-Language header is honored first, falling back to the
// configured language, so a dashboard served with -lang en still renders in
// Russian for a Russian browser profile.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := NewLocalizer(r.Header.Get("Accept-Language"), lang)
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
