package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type contextKey string

const AthleteIDKey contextKey = "athlete_id"

// AthleteID parses the {athleteID} route parameter and stores it on the
// request context. Malformed ids are rejected before the handler runs.
func AthleteID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "athleteID"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid athlete ID"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), AthleteIDKey, id)))
	})
}

// AthleteIDFrom returns the id stored by AthleteID.
func AthleteIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AthleteIDKey).(uuid.UUID)
	return id, ok
}
