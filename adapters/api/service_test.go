package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmix/app"
	"costmix/domain/core"
	"costmix/domain/model"
	"costmix/internal/testkit"
	"costmix/ports"
)

// memoryRepo is an in-memory ConfigRepositoryPort for handler tests.
type memoryRepo struct {
	configs map[core.ConfigID]*model.Config
	order   []core.ConfigID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{configs: make(map[core.ConfigID]*model.Config)}
}

func (r *memoryRepo) Save(_ context.Context, cfg *model.Config) error {
	r.configs[cfg.ID] = cfg
	r.order = append(r.order, cfg.ID)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id core.ConfigID) (*model.Config, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return nil, fmt.Errorf("config not found: %s", id)
	}
	return cfg, nil
}

func (r *memoryRepo) List(_ context.Context, limit, offset int) ([]ports.ConfigSummary, error) {
	out := make([]ports.ConfigSummary, 0, len(r.order))
	for _, id := range r.order {
		cfg := r.configs[id]
		out = append(out, ports.ConfigSummary{
			ID: cfg.ID, Tag: cfg.Tag, Fingerprint: cfg.Fingerprint, CreatedAt: cfg.CreatedAt,
		})
	}
	return out, nil
}

func newTestService(repo ports.ConfigRepositoryPort) *Service {
	return NewService(app.NewPrepService(nil), repo, nil)
}

func marBuildRequest() BuildConfigRequest {
	return BuildConfigRequest{
		Dataset:     testkit.GenerateTrial(1),
		Descriptors: testkit.InterceptOnlyDescriptors(),
		Flags:       model.Flags{Type: model.MAR, EffectDist: model.EffectNormal, CostDist: model.CostNormal},
	}
}

func postConfig(t *testing.T, svc *Service, req BuildConfigRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/configs", bytes.NewReader(body)))
	return rec
}

func TestBuildConfig_Created(t *testing.T) {
	repo := newMemoryRepo()
	rec := postConfig(t, newTestService(repo), marBuildRequest())

	require.Equal(t, http.StatusCreated, rec.Code)

	var cfg model.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, model.TagSelIndMCARShaped, cfg.Tag)
	assert.Equal(t, testkit.ControlN, cfg.Control.N)
	assert.Contains(t, repo.configs, cfg.ID)
}

func TestBuildConfig_WorksWithoutRepository(t *testing.T) {
	rec := postConfig(t, newTestService(nil), marBuildRequest())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBuildConfig_PipelineErrorsAre422(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BuildConfigRequest)
	}{
		{"bad arm coding", func(r *BuildConfigRequest) {
			for i := range r.Dataset.Arm {
				r.Dataset.Arm[i] = "A"
			}
		}},
		{"unknown covariate", func(r *BuildConfigRequest) {
			r.Descriptors.Effect.Covariates = []string{"income"}
		}},
		{"mechanism mismatch", func(r *BuildConfigRequest) {
			zero := 0.0
			r.Flags.StructuralCostValue = &zero
		}},
		{"prior binding", func(r *BuildConfigRequest) {
			r.Priors = []model.PriorOverride{{Name: "gamma.prior.e", Values: [2]float64{0, 1}}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := marBuildRequest()
			tc.mutate(&req)

			rec := postConfig(t, newTestService(nil), req)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBuildConfig_BadRequestBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestService(nil).Router().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/configs", bytes.NewReader([]byte("{not json"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildConfig_DatasetRequired(t *testing.T) {
	rec := postConfig(t, newTestService(nil), BuildConfigRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConfig(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created := postConfig(t, svc, marBuildRequest())
	require.Equal(t, http.StatusCreated, created.Code)
	var cfg model.Config
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &cfg))

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/configs/"+string(cfg.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, cfg.ID, got.ID)
	assert.Equal(t, cfg.Fingerprint, got.Fingerprint)
}

func TestGetConfig_NotFound(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/configs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConfigs(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	require.Equal(t, http.StatusCreated, postConfig(t, svc, marBuildRequest()).Code)
	require.Equal(t, http.StatusCreated, postConfig(t, svc, marBuildRequest()).Code)

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/configs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []ports.ConfigSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	assert.Len(t, summaries, 2)
}

func TestPersistenceRoutes_UnavailableWithoutRepository(t *testing.T) {
	svc := newTestService(nil)
	for _, path := range []string{"/api/v1/configs", "/api/v1/configs/x", "/api/v1/configs/x/model"} {
		rec := httptest.NewRecorder()
		svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestGetModel_PlainText(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	created := postConfig(t, svc, marBuildRequest())
	var cfg model.Config
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &cfg))

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/configs/"+string(cfg.ID)+"/model", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "model {")
}

func TestGetModel_HTML(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	created := postConfig(t, svc, marBuildRequest())
	var cfg model.Config
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &cfg))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/configs/"+string(cfg.ID)+"/model", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestListVariants(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestService(nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/variants", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var variants []VariantInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &variants))
	assert.Len(t, variants, 16)
}
