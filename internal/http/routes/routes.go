package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/hlog"

	"github.com/Nmdk1/StrideIQ-sub003/internal/db"
	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
	appmw "github.com/Nmdk1/StrideIQ-sub003/internal/http/middleware"
	"github.com/Nmdk1/StrideIQ-sub003/internal/jobs"
	"github.com/Nmdk1/StrideIQ-sub003/internal/plans"
)

const maxBodyBytes = 1 << 20

// Planner is implemented by plans.Service.
type Planner interface {
	Preview(req plans.Request) (*domain.Plan, error)
	Regenerate(ctx context.Context, athleteID uuid.UUID, req plans.Request) (*domain.Plan, error)
	Active(ctx context.Context, athleteID uuid.UUID) (*domain.Plan, error)
}

// Enqueuer is implemented by jobs.Client.
type Enqueuer interface {
	EnqueueGeneratePlan(ctx context.Context, p jobs.GeneratePlanPayload) (*asynq.TaskInfo, error)
}

// Catalog is implemented by templates.Registry.
type Catalog interface {
	List() []string
	Template(id string) (domain.WorkoutTemplate, bool)
}

type Server struct {
	Router  *chi.Mux
	Plans   Planner
	Jobs    Enqueuer // nil disables async generation
	Catalog Catalog
}

type ServerOptions struct {
	Plans   Planner
	Jobs    Enqueuer
	Catalog Catalog
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Plans: opts.Plans, Jobs: opts.Jobs, Catalog: opts.Catalog}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("error writing health check response")
		}
	})

	r.Get("/templates", s.handleListTemplates)
	r.Get("/templates/{templateID}", s.handleGetTemplate)
	r.Post("/plans/preview", s.handlePreview)

	r.Route("/athletes/{athleteID}", func(ar chi.Router) {
		ar.Use(appmw.AthleteID)
		ar.Post("/plans", s.handleGenerate)
		ar.Get("/plan", s.handleActivePlan)
	})

	return s
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ids := s.Catalog.List()
	out := make([]domain.WorkoutTemplate, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Catalog.Template(id); ok {
			out = append(out, t)
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Catalog.Template(chi.URLParam(r, "templateID"))
	if !ok {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: "template not found"})
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	p, err := s.Plans.Preview(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	athleteID, _ := appmw.AthleteIDFrom(r.Context())
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("async") == "1" {
		if s.Jobs == nil {
			writeJSON(w, r, http.StatusServiceUnavailable, errorBody{Error: "async generation is not configured"})
			return
		}
		info, err := s.Jobs.EnqueueGeneratePlan(r.Context(), jobs.GeneratePlanPayload{
			AthleteID: athleteID.String(),
			Request:   req,
		})
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("athlete_id", athleteID.String()).Msg("failed to enqueue plan job")
			writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "failed to queue plan job"})
			return
		}
		writeJSON(w, r, http.StatusAccepted, taskBody{TaskID: info.ID, Queue: info.Queue})
		return
	}

	p, err := s.Plans.Regenerate(r.Context(), athleteID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().
		Str("athlete_id", athleteID.String()).
		Str("plan_id", p.ID.String()).
		Msg("plan regenerated")
	writeJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleActivePlan(w http.ResponseWriter, r *http.Request) {
	athleteID, _ := appmw.AthleteIDFrom(r.Context())
	p, err := s.Plans.Active(r.Context(), athleteID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

type errorBody struct {
	Error string `json:"error"`
}

type taskBody struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (plans.Request, bool) {
	var req plans.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return plans.Request{}, false
	}
	return req, true
}

// writeError maps domain failures onto status codes. Anything unexpected is
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsatisfiableConstraint):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, r, status, errorBody{Error: "internal server error"})
		return
	}
	writeJSON(w, r, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("error writing response")
	}
}
