package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rescuelink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var decoder = form.NewDecoder()

type ReportService interface {
	List(ctx context.Context, filter types.ReportFilter) []*types.Report
	Report(ctx context.Context, id string) (*types.Report, error)
	Views(ctx context.Context) types.Views
	Submit(ctx context.Context, sub types.ReportSubmission) (*types.Report, error)
	Transition(ctx context.Context, id string, patch types.ReportPatch) (*types.Report, error)
}

type ContactService interface {
	List(ctx context.Context) []*types.Contact
	Create(ctx context.Context, in types.ContactInput) (*types.Contact, error)
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	reports  ReportService
	contacts ContactService

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	reports ReportService,
	contacts ContactService,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		reports:  reports,
		contacts: contacts,
	}

	s.buildRouter(mux)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(s.RequestID(s.StripTrailingSlash(mux)))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// Handler exposes the fully wrapped router, mainly for httptest.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.LimitBody)

		r.HandleFunc("/api/reports", s.handleListReports, http.MethodGet)
		r.HandleFunc("/api/reports", s.handleSubmitReport, http.MethodPost)
		r.HandleFunc("/api/reports/views", s.handleReportViews, http.MethodGet)
		r.HandleFunc("/api/reports/:id", s.handleGetReport, http.MethodGet)
		r.HandleFunc("/api/reports/:id", s.handlePatchReport, http.MethodPatch)

		r.HandleFunc("/api/contacts", s.handleListContacts, http.MethodGet)
		r.HandleFunc("/api/contacts", s.handleCreateContact, http.MethodPost)
	})
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Disaster Alert API is running..."))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
