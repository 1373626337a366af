package http

import (
	"net/http"
	"strconv"

	"github.com/Jackson-sch/sistema-escolar/internal/audit"
)

// GET /audit/events?limit=  — administrative activity view over the grade
// event log.
func RecentEventsHandler(repo *audit.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		events, err := repo.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}
