package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"neighborly/internal/catalog"
	"neighborly/internal/config"
	"neighborly/internal/domain"
	"neighborly/internal/ingest"
	"neighborly/internal/metrics"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
)

// BookingRequester resolves a booking request for a listing. booking.Flow
// satisfies it.
type BookingRequester interface {
	Request(ctx context.Context, listing *models.Listing, requesterID string) (string, error)
}

// HTTPServer exposes the catalog, ingestion and booking operations over HTTP.
type HTTPServer struct {
	cfg       config.APIConfig
	catalog   *catalog.Index
	ingestor  *ingest.Ingestor
	media     *StagedMedia
	bookings  BookingRequester
	states    domain.StateRepository
	maxUpload int64
	server    *http.Server
	auth      *HTTPAuth
	logger    *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	index *catalog.Index,
	ingestor *ingest.Ingestor,
	media *StagedMedia,
	bookings BookingRequester,
	states domain.StateRepository,
	maxUpload int64,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:       cfg,
		catalog:   index,
		ingestor:  ingestor,
		media:     media,
		bookings:  bookings,
		states:    states,
		maxUpload: maxUpload,
		logger:    logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/listings/search", srv.handleSearch)
	mux.HandleFunc("/api/v1/listings/", srv.handleListing)
	mux.HandleFunc("/api/v1/listings", srv.handleListings)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/health", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler returns the configured root handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"listings": s.catalog.All()})
	case http.MethodPost:
		s.handleCreateListing(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = models.CategoryAll
	}

	metrics.IncSearch()
	results := s.catalog.Filter(query, category)
	writeJSON(w, http.StatusOK, map[string]any{"listings": results})
}

func (s *HTTPServer) handleListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/listings/"
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "listing id is required")
		return
	}

	listing := s.catalog.Get(id)
	if listing == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *HTTPServer) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	maxUpload := s.maxUpload
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	form := ingest.Form{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		OwnerName:   r.FormValue("owner_name"),
		OwnerID:     r.FormValue("owner_id"),
	}
	if lat, err := strconv.ParseFloat(r.FormValue("lat"), 64); err == nil {
		form.Location.Lat = lat
	}
	if lon, err := strconv.ParseFloat(r.FormValue("lon"), 64); err == nil {
		form.Location.Lon = lon
	}
	if until := r.FormValue("available_until"); until != "" {
		if t, err := time.Parse("2006-01-02", until); err == nil {
			form.AvailableUntil = t
		}
	}

	handle := s.media.Stage(data)
	defer s.media.Release(handle)

	listing, err := s.ingestor.Submit(r.Context(), form, handle)
	if err != nil {
		s.writeIngestError(w, err)
		return
	}

	metrics.IncIngest("created")
	s.catalog.Add(listing)
	writeJSON(w, http.StatusCreated, listing)
}

func (s *HTTPServer) writeIngestError(w http.ResponseWriter, err error) {
	if verr, ok := ingest.IsValidation(err); ok {
		metrics.IncIngest("validation_error")
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, ingest.ErrBusy):
		metrics.IncIngest("busy")
		writeError(w, http.StatusConflict, "a submission is already in progress")
	case errors.Is(err, ingest.ErrPermissionDenied):
		metrics.IncIngest("permission_denied")
		writeError(w, http.StatusForbidden, "media access denied")
	case errors.Is(err, ingest.ErrUploadFailure):
		metrics.IncIngest("upload_failure")
		writeError(w, http.StatusBadGateway, "image upload failed")
	case errors.Is(err, ingest.ErrPersistFailure):
		metrics.IncIngest("persist_failure")
		writeError(w, http.StatusInternalServerError, "failed to save listing")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		ListingID   string `json:"listing_id"`
		RequesterID string `json:"requester_id"`
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var body request
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ListingID == "" || body.RequesterID == "" {
		writeError(w, http.StatusBadRequest, "listing_id and requester_id are required")
		return
	}

	listing := s.catalog.Get(body.ListingID)
	if listing == nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}

	if s.states != nil {
		allowed, err := s.states.CheckRateLimit(r.Context(), body.RequesterID,
			models.RateLimitRequests, models.RateLimitWindow*time.Second)
		if err != nil {
			s.logger.Warn().Err(err).Str("requester_id", body.RequesterID).Msg("rate limit check failed")
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "too many booking requests")
			return
		}
	}

	status, err := s.bookings.Request(r.Context(), listing, body.RequesterID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	metrics.IncBooking(status)
	resp := map[string]any{
		"listing_id": listing.ID,
		"status":     status,
	}
	if status == models.StatusFulfilled {
		resp["owner_response_by"] = time.Now().Add(models.OwnerResponseWindow)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
