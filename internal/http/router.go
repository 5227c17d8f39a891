package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	SessionsMe      http.HandlerFunc
	SessionGet      http.HandlerFunc
	SessionUpdate   http.HandlerFunc
	StatsMe         http.HandlerFunc
	StatsGlobal     http.HandlerFunc
	Currencies      http.HandlerFunc
	CurrencyDetect  http.HandlerFunc
	CurrencyConvert http.HandlerFunc
	APIKeyCreate    http.HandlerFunc
	Updates         http.Handler
	Health          http.HandlerFunc
}

// NewRouter registers endpoints. The auth middleware wraps everything that acts on
// behalf of a user; health, the currency table and global stats stay public.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.Handler) http.Handler {
		if auth == nil {
			return h
		}
		return auth(h)
	}

	if routes.SessionsMe != nil {
		mux.Handle("/sessions/me", protect(method(http.MethodGet, routes.SessionsMe)))
	}
	if routes.SessionGet != nil {
		mux.Handle("/sessions/get", protect(method(http.MethodGet, routes.SessionGet)))
	}
	if routes.SessionUpdate != nil {
		mux.Handle("/sessions/update", protect(method(http.MethodPost, routes.SessionUpdate)))
	}
	if routes.StatsMe != nil {
		mux.Handle("/stats/me", protect(method(http.MethodGet, routes.StatsMe)))
	}
	if routes.StatsGlobal != nil {
		mux.Handle("/stats/global", method(http.MethodGet, routes.StatsGlobal))
	}
	if routes.Currencies != nil {
		mux.Handle("/currencies", method(http.MethodGet, routes.Currencies))
	}
	if routes.CurrencyDetect != nil {
		mux.Handle("/currencies/detect", method(http.MethodGet, routes.CurrencyDetect))
	}
	if routes.CurrencyConvert != nil {
		mux.Handle("/currencies/convert", method(http.MethodGet, routes.CurrencyConvert))
	}
	if routes.APIKeyCreate != nil {
		mux.Handle("/keys", protect(method(http.MethodPost, routes.APIKeyCreate)))
	}
	if routes.Updates != nil {
		mux.Handle("/ws/updates", protect(routes.Updates))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
