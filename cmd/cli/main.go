package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"costmix/adapters/excel"
	"costmix/adapters/jags"
	"costmix/app"
	"costmix/domain/model"
	"costmix/internal"
	"costmix/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "costmix",
		Short: "Prepare two-arm trial data and resolve cost-effectiveness model variants",
	}

	rootCmd.AddCommand(
		newResolveCmd(),
		newDemoCmd(),
		newVariantsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newResolveCmd() *cobra.Command {
	var (
		dataPath  string
		mechType  string
		distE     string
		distC     string
		covE      []string
		covC      []string
		covME     []string
		covMC     []string
		covSE     []string
		covSC     []string
		seValue   float64
		scValue   float64
		priors    []string
		keepModel string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a model configuration from a trial data file",
		Long: `Resolve a model configuration from a trial data file (.xlsx or .csv).

Example: costmix resolve --data trial.csv --type MAR --dist-e norm --dist-c gamma \
    --cov-e age --cov-mc age,sex --prior "gamma.prior.c=0,0.1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := internal.DefaultLogger
			reader := excel.NewDataReader(log)
			ds, err := reader.Read(cmd.Context(), dataPath)
			if err != nil {
				return err
			}

			flags := model.Flags{
				Type:       model.MechanismType(mechType),
				EffectDist: model.EffectDist(distE),
				CostDist:   model.CostDist(distC),
			}
			if cmd.Flags().Changed("se-value") {
				flags.StructuralEffectValue = &seValue
			}
			if cmd.Flags().Changed("sc-value") {
				flags.StructuralCostValue = &scValue
			}

			overrides, err := parsePriors(priors)
			if err != nil {
				return err
			}

			set := testkit.InterceptOnlyDescriptors()
			set.Effect.Covariates = covE
			set.Cost.Covariates = covC
			set.MissingEffect.Covariates = covME
			set.MissingCost.Covariates = covMC
			set.StructuralEffect.Covariates = covSE
			set.StructuralCost.Covariates = covSC

			cfg, err := app.NewPrepService(log).Build(cmd.Context(), app.PrepRequest{
				Dataset:     ds,
				Descriptors: set,
				Flags:       flags,
				Priors:      overrides,
			})
			if err != nil {
				return err
			}

			if keepModel != "" {
				if err := jags.NewRenderer().WriteModel(cfg, keepModel); err != nil {
					return err
				}
				log.Info("model definition written to %s", keepModel)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "path to the trial data file (.xlsx or .csv)")
	cmd.Flags().StringVar(&mechType, "type", "MAR", "mechanism type: MAR, MNAR, SCAR, SAR")
	cmd.Flags().StringVar(&distE, "dist-e", "norm", "effect distribution: norm, beta")
	cmd.Flags().StringVar(&distC, "dist-c", "norm", "cost distribution: norm, gamma, lnorm")
	cmd.Flags().StringSliceVar(&covE, "cov-e", nil, "effect model covariates")
	cmd.Flags().StringSliceVar(&covC, "cov-c", nil, "cost model covariates (may include e for joint modelling)")
	cmd.Flags().StringSliceVar(&covME, "cov-me", nil, "effect missingness model covariates")
	cmd.Flags().StringSliceVar(&covMC, "cov-mc", nil, "cost missingness model covariates")
	cmd.Flags().StringSliceVar(&covSE, "cov-se", nil, "structural effect model covariates")
	cmd.Flags().StringSliceVar(&covSC, "cov-sc", nil, "structural cost model covariates")
	cmd.Flags().Float64Var(&seValue, "se-value", 1, "structural effect value (hurdle models)")
	cmd.Flags().Float64Var(&scValue, "sc-value", 0, "structural cost value (hurdle models)")
	cmd.Flags().StringArrayVar(&priors, "prior", nil, `prior override, e.g. "sigma.prior.e=0,50" (repeatable)`)
	cmd.Flags().StringVar(&keepModel, "keep-model", "", "persist the rendered model definition to this path")
	cmd.MarkFlagRequired("data")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the synthetic demo trial through the full pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := testkit.GenerateTrial(seed)
			cfg, err := app.NewPrepService(internal.DefaultLogger).Build(cmd.Context(), app.PrepRequest{
				Dataset:     ds,
				Descriptors: testkit.InterceptOnlyDescriptors(),
				Flags: model.Flags{
					Type:       model.MAR,
					EffectDist: model.EffectNormal,
					CostDist:   model.CostNormal,
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "variant: %s\n", cfg.Tag)
			fmt.Fprintf(cmd.OutOrStdout(), "control: n=%d, e missing=%d, c missing=%d\n",
				cfg.Control.N, cfg.Control.EffectMissing, cfg.Control.CostMissing)
			fmt.Fprintf(cmd.OutOrStdout(), "intervention: n=%d, e missing=%d, c missing=%d\n",
				cfg.Intervention.N, cfg.Intervention.EffectMissing, cfg.Intervention.CostMissing)
			fmt.Fprint(cmd.OutOrStdout(), jags.NewRenderer().Render(cfg))
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the synthetic outcome values")
	return cmd
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the closed model-variant tag set",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range model.TagCatalogue() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s family=%s joint=%v\n", info.Tag, info.Family, info.Joint)
			}
			return nil
		},
	}
}

// parsePriors parses "name=a,b" override flags.
func parsePriors(raw []string) ([]model.PriorOverride, error) {
	var out []model.PriorOverride
	for _, s := range raw {
		name, vals, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid prior override %q (want name=a,b)", s)
		}
		parts := strings.Split(vals, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid prior override %q (want two comma-separated values)", s)
		}
		var values [2]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid prior override %q: %w", s, err)
			}
			values[i] = f
		}
		out = append(out, model.PriorOverride{Name: strings.TrimSpace(name), Values: values})
	}
	return out, nil
}
