package jags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmix/app"
	"costmix/domain/model"
	"costmix/internal/testkit"
)

func buildConfig(t *testing.T, req app.PrepRequest) *model.Config {
	t.Helper()
	cfg, err := app.NewPrepService(nil).Build(context.Background(), req)
	require.NoError(t, err)
	return cfg
}

func marConfig(t *testing.T) *model.Config {
	t.Helper()
	return buildConfig(t, app.PrepRequest{
		Dataset:     testkit.GenerateTrial(1),
		Descriptors: testkit.InterceptOnlyDescriptors(),
		Flags:       model.Flags{Type: model.MAR, EffectDist: model.EffectNormal, CostDist: model.CostNormal},
	})
}

func TestRender_SelectionModel(t *testing.T) {
	text := NewRenderer().Render(marConfig(t))

	assert.Contains(t, text, "model {")
	assert.Contains(t, text, "for (i in 1:N1)")
	assert.Contains(t, text, "for (i in 1:N2)")
	assert.Contains(t, text, "e1[i] ~ dnorm(mu_e1[i], tau_e[1])")
	assert.Contains(t, text, "c2[i] ~ dnorm(mu_c2[i], tau_c[2])")
	assert.Contains(t, text, "m_e1[i] ~ dbern(p_e1[i])")
	assert.Contains(t, text, "m_c2[i] ~ dbern(p_c2[i])")

	// MAR: no departure term in the missingness predictor.
	assert.NotContains(t, text, "delta_e")
	assert.NotContains(t, text, "theta[")
}

func TestRender_MNARAddsDepartureTerm(t *testing.T) {
	cfg := buildConfig(t, app.PrepRequest{
		Dataset:     testkit.GenerateTrial(1),
		Descriptors: testkit.InterceptOnlyDescriptors(),
		Flags:       model.Flags{Type: model.MNAR, EffectDist: model.EffectNormal, CostDist: model.CostNormal},
	})

	text := NewRenderer().Render(cfg)
	assert.Contains(t, text, "delta_e[1] * e1[i]")
	assert.Contains(t, text, "delta_c[2] * c2[i]")
}

func TestRender_JointAddsThetaTerm(t *testing.T) {
	req := app.PrepRequest{
		Dataset:     testkit.GenerateTrial(1),
		Descriptors: testkit.InterceptOnlyDescriptors(),
		Flags:       model.Flags{Type: model.MAR, EffectDist: model.EffectNormal, CostDist: model.CostNormal},
	}
	req.Descriptors.Cost.Covariates = []string{model.ResponseEffect}

	text := NewRenderer().Render(buildConfig(t, req))
	assert.Contains(t, text, "theta[1] * (e1[i] - mean_e[1])")
}

func TestRender_HurdleModel(t *testing.T) {
	zero := 0.0
	cfg := buildConfig(t, app.PrepRequest{
		Dataset:     testkit.GenerateHurdleTrial(1),
		Descriptors: testkit.InterceptOnlyDescriptors(),
		Flags: model.Flags{
			Type:                model.SCAR,
			EffectDist:          model.EffectNormal,
			CostDist:            model.CostGamma,
			StructuralCostValue: &zero,
		},
	})

	text := NewRenderer().Render(cfg)
	assert.Contains(t, text, "c1[i] ~ dgamma(shape_c[1], rate_c1[i])")
	assert.Contains(t, text, "log(mu_c1[i])")
	assert.Contains(t, text, "d_c1[i] ~ dbern(q_c1[i])")
	assert.NotContains(t, text, "d_e1[i]")
	assert.NotContains(t, text, "m_e1[i]")
}

func TestRender_Deterministic(t *testing.T) {
	cfg := marConfig(t)
	r := NewRenderer()
	assert.Equal(t, r.Render(cfg), r.Render(cfg))
}

func TestRender_ListsBoundPriors(t *testing.T) {
	cfg := marConfig(t)
	text := NewRenderer().Render(cfg)

	for name := range cfg.Priors {
		assert.Contains(t, text, "# "+name+":")
	}
	assert.NotContains(t, text, "# delta.prior.e:")
}

func TestWriteModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifacts", "model.txt")

	cfg := marConfig(t)
	require.NoError(t, NewRenderer().WriteModel(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, NewRenderer().Render(cfg), string(data))
}

func TestDocument(t *testing.T) {
	cfg := marConfig(t)
	doc := NewRenderer().Document(cfg)

	assert.Contains(t, doc, string(cfg.ID))
	assert.Contains(t, doc, "| control | 150 | 139 | 11 |")
	assert.Contains(t, doc, "## Model definition")
	assert.Contains(t, doc, "model {")
}
