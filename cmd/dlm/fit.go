package main

import (
	"fmt"
	"math"
	"slices"

	"github.com/Lepecin/dlm-dissertation/config"
	"github.com/Lepecin/dlm-dissertation/fitters"
	"github.com/Lepecin/dlm-dissertation/score"
	"github.com/Lepecin/dlm-dissertation/visual"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

var fitFlags struct {
	config  string
	data    string
	plot    string
	alpha   float64
	feature int
	subject int
	style   string
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model and report its filtered, smoothed and forecast series",
		Long: `Runs the forward, backward and beyond passes of the configured model and
prints each series of one observed feature with its Student-t band.

Example:
  dlm fit --config sales.yaml --plot sales.png --alpha 0.1`,
		Args: cobra.NoArgs,
		RunE: runFit,
	}
	cmd.Flags().StringVarP(&fitFlags.config, "config", "c", "", "Model configuration (required)")
	cmd.Flags().StringVar(&fitFlags.data, "data", "", "CSV file replacing the configured data")
	cmd.Flags().StringVar(&fitFlags.plot, "plot", "", "Write a chart to this file (png, svg, pdf)")
	cmd.Flags().Float64Var(&fitFlags.alpha, "alpha", 0.05, "Significance level of the bands")
	cmd.Flags().IntVar(&fitFlags.feature, "feature", 0, "Observed series to report")
	cmd.Flags().IntVar(&fitFlags.subject, "subject", 0, "Subject to report")
	cmd.Flags().StringVar(&fitFlags.style, "style", "default", "Table style: default, light, round, bold, double")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func loadConfig(path, data string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if data != "" {
		cfg.Data.Path, cfg.Data.Values = data, nil
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runFit(cmd *cobra.Command, args []string) error {
	if fitFlags.alpha <= 0 || fitFlags.alpha >= 1 {
		return fmt.Errorf("alpha must lie in (0, 1), got %g", fitFlags.alpha)
	}
	cfg, err := loadConfig(fitFlags.config, fitFlags.data)
	if err != nil {
		return err
	}
	prime, err := cfg.Build()
	if err != nil {
		return err
	}
	logger.Info("fitting model",
		zap.String("name", cfg.Name),
		zap.Int("observed", prime.Observed),
		zap.Int("horizon", prime.Horizon))

	opts := append([]fitters.Option{fitters.WithLogger(logger)}, cfg.Options()...)
	model, err := fitters.NewDLM(prime, opts...)
	if err != nil {
		return err
	}
	if err := model.Fit(); err != nil {
		return err
	}

	m := model.Memory()
	s, p := prime.Observed, prime.Horizon
	f, k := fitFlags.feature, fitFlags.subject
	evolved, err := score.Observed(m.EvolvedSpaces, m.Wisharts, s, f, k, fitFlags.alpha)
	if err != nil {
		return err
	}
	filtered, err := score.Observed(m.FilteredSpaces, m.Wisharts, s, f, k, fitFlags.alpha)
	if err != nil {
		return err
	}
	smoothed, err := score.Observed(m.SmoothedSpaces, m.Wisharts, s, f, k, fitFlags.alpha)
	if err != nil {
		return err
	}
	predicted, err := score.Predicted(m.PredictedSpaces, m.Wisharts, s, p, f, k, fitFlags.alpha)
	if err != nil {
		return err
	}
	ll, err := score.LogLikelihood(m.EvolvedSpaces, prime.Observations, s)
	if err != nil {
		return err
	}

	observed := prime.Observations[:s].Column(f, k)
	// Observations past s are held out of the fit and shown against the
	// forecast.
	heldOut := prime.Observations[s:min(len(prime.Observations), s+p)].Column(f, k)
	out := cmd.OutOrStdout()
	renderBands(out, fitFlags.style, slices.Concat(observed, heldOut), evolved, filtered, smoothed, predicted)
	fmt.Fprintf(out, "log-likelihood: %.6f\n", ll)

	if fitFlags.plot != "" {
		title := cfg.Name
		if title == "" {
			title = "dlm"
		}
		fig := visual.NewFigure(title, "time", fmt.Sprintf("feature %d", f))
		if err := fig.AddObservations("observed", observed, 1); err != nil {
			return err
		}
		if slices.ContainsFunc(heldOut, func(v float64) bool { return !math.IsNaN(v) }) {
			if err := fig.AddObservations("held out", heldOut, s+1); err != nil {
				return err
			}
		}
		for _, band := range []struct {
			name string
			b    *score.Band
		}{{"evolved", evolved}, {"filtered", filtered}, {"smoothed", smoothed}, {"predicted", predicted}} {
			if err := fig.AddBand(band.name, band.b); err != nil {
				return err
			}
		}
		if err := fig.Save(8*vg.Inch, 4*vg.Inch, fitFlags.plot); err != nil {
			return fmt.Errorf("failed to save plot: %w", err)
		}
		logger.Info("plot written", zap.String("path", fitFlags.plot))
	}
	return nil
}
