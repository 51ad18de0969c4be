// Package http exposes the operations API: report previews and sends,
// manual pipeline runs, cooldown management, recipient opt-in and the
// delivery log.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teampulse/pulse-service/internal/apperrors"
	"github.com/teampulse/pulse-service/internal/domain"
	"github.com/teampulse/pulse-service/internal/remote"
	"github.com/teampulse/pulse-service/internal/service"
	"github.com/teampulse/pulse-service/internal/validation"
	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

// Server routes API requests to the service layer.
type Server struct {
	log      *slog.Logger
	reports  service.ReportService
	delivery service.DeliveryService
	sync     service.SyncService
	admin    service.AdminService
}

func NewServer(
	log *slog.Logger,
	reports service.ReportService,
	delivery service.DeliveryService,
	sync service.SyncService,
	admin service.AdminService,
) *Server {
	return &Server{
		log:      log,
		reports:  reports,
		delivery: delivery,
		sync:     sync,
		admin:    admin,
	}
}

// Routes assembles the router: middleware first, then the API surface.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Get("/healthz", s.GetHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/report", func(r chi.Router) {
		r.Get("/preview", s.GetReportPreview)
		r.Post("/send", s.PostReportSend)
		r.Post("/run", s.PostReportRun)
	})

	mux.Post("/sync/run", s.PostSyncRun)

	mux.Route("/cooldowns", func(r chi.Router) {
		r.Put("/", s.PutCooldowns)
		r.Get("/{userID}", s.GetCooldownsUserID)
	})

	mux.Post("/recipients/opt", s.PostRecipientsOpt)
	mux.Get("/deliveries", s.GetDeliveries)

	return mux
}

func (s *Server) GetHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetReportPreview generates (or serves the cached) report for one user
// without delivering it.
func (s *Server) GetReportPreview(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetReportPreview"

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	result, err := s.reports.Generate(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toPreviewResponse(userID, result))
}

func (s *Server) PostReportSend(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostReportSend"

	var req sendReportRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	result, err := s.reports.Send(r.Context(), req.UserID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]*domain.DeliveryResult{"result": result})
}

// PostReportRun triggers the full delivery pipeline, the same one the
// scheduler fires on Monday mornings.
func (s *Server) PostReportRun(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostReportRun"

	results, summary, err := s.delivery.DeliverToAll(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, runResponse{
		Summary: summary,
		Results: results,
	})
}

func (s *Server) PostSyncRun(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostSyncRun"

	summary, err := s.sync.SyncUsers(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]*domain.SyncSummary{"summary": summary})
}

func (s *Server) PutCooldowns(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PutCooldowns"

	var req upsertCooldownRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	nextStart, err := time.Parse("2006-01-02", req.NextStart)
	if err != nil {
		s.handleServiceError(w, r, op, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err))
		return
	}

	schedule, err := s.admin.UpsertCooldown(r.Context(), req.UserID, nextStart, req.DurationWeeks)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]scheduleResponse{"schedule": toScheduleResponse(schedule)})
}

func (s *Server) GetCooldownsUserID(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetCooldownsUserID"

	userID := chi.URLParam(r, "userID")

	schedule, status, err := s.admin.GetCooldown(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCooldownResponse(schedule, status))
}

func (s *Server) PostRecipientsOpt(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostRecipientsOpt"

	var req optRecipientRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	link, err := s.admin.SetOptedIn(r.Context(), req.UserID, req.OptedIn)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toRecipientResponse(link))
}

func (s *Server) GetDeliveries(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetDeliveries"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := s.admin.RecentDeliveries(r.Context(), limit)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if entries == nil {
		entries = []domain.DeliveryLogEntry{}
	}

	s.writeJSON(w, http.StatusOK, map[string][]domain.DeliveryLogEntry{"deliveries": entries})
}

// writeJSON serializes payload and writes it with the given status.
// Encoding failures are only logged: the status line is already on the
// wire by then.
func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]string{"error": message})
}

// decodeAndValidate reads the JSON body into v and checks it against
// its validation tags.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return validation.ValidateStruct(v)
}

// handleServiceError logs err under op and maps it onto the response
// the caller gets to see. Internal detail stays in the log.
func (s *Server) handleServiceError(w http.ResponseWriter, _ *http.Request, op string, err error) {
	s.log.With(slog.String("op", op)).Error("service error occurred", sl.Err(err))

	code, message := errorResponse(err)
	s.writeError(w, code, message)
}

func errorResponse(err error) (int, string) {
	var (
		validationErr *validation.ValidationError
		identityErr   *apperrors.NoTrackerIdentityError
		optedOutErr   *apperrors.OptedOutError
		remoteErr     *remote.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, fmt.Sprintf("%s: %s", apperrors.ErrValidation, validationErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.As(err, &identityErr):
		return http.StatusConflict, identityErr.Error()
	case errors.As(err, &optedOutErr):
		return http.StatusConflict, optedOutErr.Error()
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, "upstream api error: " + remoteErr.Kind.String()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
