package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/rounds/{round}/results", handler.ListResults)
	mux.HandleFunc("GET /v1/rounds/{round}/standings", handler.GetStandings)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/ws/rounds/{round}/standings", handler.StreamStandings)
	mux.HandleFunc("GET /v1/ws/teams", handler.StreamTeams)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, guard func(http.Handler) http.Handler) {
	mux.Handle("POST /v1/teams", guard(http.HandlerFunc(handler.RegisterTeams)))
	mux.Handle("PUT /v1/teams/{teamID}", guard(http.HandlerFunc(handler.UpdateTeam)))
	mux.Handle("DELETE /v1/teams/{teamID}", guard(http.HandlerFunc(handler.DeleteTeam)))
	mux.Handle("POST /v1/rounds/{round}/results", guard(http.HandlerFunc(handler.SubmitResults)))
	mux.Handle("DELETE /v1/admin/data", guard(http.HandlerFunc(handler.ResetAll)))
}
