package server

import "net/http"

// Routes returns the server mux wrapped in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/feeds", s.HandleFeedsList)
	mux.HandleFunc("GET /feeds/{file}", s.HandleFeed)

	return RequestLogger(mux)
}
