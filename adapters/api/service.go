package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"costmix/adapters/jags"
	"costmix/app"
	"costmix/domain/core"
	"costmix/domain/model"
	"costmix/internal"
	"costmix/ports"
)

// Service exposes the preparation pipeline over HTTP. The repository is
// optional: without one, configs are resolved and returned but not stored.
type Service struct {
	prep     *app.PrepService
	repo     ports.ConfigRepositoryPort
	renderer *jags.Renderer
	log      *internal.Logger
}

// NewService creates an API service
func NewService(prep *app.PrepService, repo ports.ConfigRepositoryPort, log *internal.Logger) *Service {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Service{prep: prep, repo: repo, renderer: jags.NewRenderer(), log: log}
}

// Router builds the chi router for the service
func (s *Service) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/configs", s.handleBuildConfig)
		r.Get("/configs", s.handleListConfigs)
		r.Get("/configs/{id}", s.handleGetConfig)
		r.Get("/configs/{id}/model", s.handleGetModel)
		r.Get("/variants", s.handleListVariants)
	})
	return r
}

func (s *Service) handleBuildConfig(w http.ResponseWriter, r *http.Request) {
	var req BuildConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Dataset == nil {
		s.writeError(w, http.StatusBadRequest, "dataset is required")
		return
	}

	cfg, err := s.prep.Build(r.Context(), app.PrepRequest{
		Dataset:                  req.Dataset,
		Descriptors:              req.Descriptors,
		Flags:                    req.Flags,
		Priors:                   req.Priors,
		EffectStructuralOverride: req.EffectStructuralOverride,
		CostStructuralOverride:   req.CostStructuralOverride,
	})
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	if s.repo != nil {
		if err := s.repo.Save(r.Context(), cfg); err != nil {
			s.log.Error("failed to persist config %s: %v", cfg.ID, err)
			s.writeError(w, http.StatusInternalServerError, "failed to persist config")
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, cfg)
}

func (s *Service) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, http.StatusServiceUnavailable, "config persistence not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	summaries, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Service) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfig(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Service) handleGetModel(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfig(w, r)
	if !ok {
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		doc := s.renderer.Document(cfg)
		p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
		renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(markdown.ToHTML([]byte(doc), p, renderer))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.renderer.Render(cfg)))
}

func (s *Service) handleListVariants(w http.ResponseWriter, r *http.Request) {
	catalogue := model.TagCatalogue()
	out := make([]VariantInfo, len(catalogue))
	for i, t := range catalogue {
		out[i] = VariantInfo{Tag: t.Tag, Family: t.Family, Joint: t.Joint}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Service) loadConfig(w http.ResponseWriter, r *http.Request) (*model.Config, bool) {
	if s.repo == nil {
		s.writeError(w, http.StatusServiceUnavailable, "config persistence not configured")
		return nil, false
	}
	id, err := core.ParseConfigID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	cfg, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return cfg, true
}

// writePipelineError maps the preparation error taxonomy to HTTP statuses.
// Every pipeline failure is an input-shape defect, so they are all 4xx.
func (s *Service) writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case core.IsSchemaError(err),
		core.IsArmCodingError(err),
		core.IsUnknownCovariateError(err),
		core.IsMechanismMismatchError(err),
		core.IsPriorBindingError(err),
		core.IsIndicatorOverrideError(err):
	default:
		status = http.StatusInternalServerError
	}
	s.writeError(w, status, err.Error())
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}
