package api

import "net/http"

func (a *Admin) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", Index)
	mux.HandleFunc("/api/relays", a.ListRelays)
	mux.HandleFunc("/api/check", a.Check)
	mux.HandleFunc("/api/check/stream", a.CheckStream)
	mux.HandleFunc("/api/save", a.Save)
}
