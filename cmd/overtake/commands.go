package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

var (
	seed      int64
	label     string
	csvPath   string
	jsonPath  string
	sweepFrom float64
	sweepTo   float64
	sweepStep int
	sweepArg  string
	limit     int
)

var analyseCmd = &cobra.Command{
	Use:   "analyse",
	Short: "Run one overtaking analysis and print a section report",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		app, err := newApplication(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.close()

		outcome, err := app.service.Analyse(cmd.Context(), service.AnalysisRequest{
			Label:  label,
			Params: params,
			Seed:   seed,
			Mode:   models.ModeAnalyse,
		})
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), app.reporter.GenerateConsoleReport(outcome.Run, outcome.Summary))

		if csvPath != "" {
			if err := app.reporter.GenerateCSVExport(outcome.Result, csvPath); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CSV written to %s\n", csvPath)
		}
		if jsonPath != "" {
			if err := app.reporter.ExportToJSON(outcome.Run, jsonPath); err != nil {
				return fmt.Errorf("failed to write json: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "JSON written to %s\n", jsonPath)
		}
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Print raw per-section overtaking probabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		app, err := newApplication(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.close()

		outcome, err := app.service.Simulate(cmd.Context(), params, seed)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), app.reporter.GenerateSimulationReport(outcome))
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Vary one parameter and report the mean overtaking probability at each step",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		app, err := newApplication(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.close()

		points, err := app.service.Sweep(cmd.Context(), service.SweepRequest{
			Parameter: sweepArg,
			From:      sweepFrom,
			To:        sweepTo,
			Steps:     sweepStep,
			Params:    params,
			Seed:      seed,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), app.reporter.GenerateSweepReport(sweepArg, points))
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare section probabilities with and without overtake zones",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		app, err := newApplication(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.close()

		comparison, err := app.service.CompareZones(cmd.Context(), params, seed)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), app.reporter.GenerateComparisonReport(comparison))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer app.close()

		runs, err := app.service.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), app.reporter.GenerateHistoryReport(runs))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{analyseCmd, simulateCmd, sweepCmd, compareCmd} {
		cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the configured seed, then the clock)")
		addParamFlags(cmd)
	}

	analyseCmd.Flags().StringVar(&label, "label", "", "Label stored with the run")
	analyseCmd.Flags().StringVar(&csvPath, "csv", "", "Write per-section values to this CSV file")
	analyseCmd.Flags().StringVar(&jsonPath, "json", "", "Write the run to this JSON file")

	sweepCmd.Flags().StringVar(&sweepArg, "param", "", fmt.Sprintf("Parameter to sweep %v", service.SweepParameters()))
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "First value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "Last value")
	sweepCmd.Flags().IntVar(&sweepStep, "steps", 5, "Number of evenly spaced values, at least 2")
	_ = sweepCmd.MarkFlagRequired("param")

	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
}

// addParamFlags registers one flag per model parameter
func addParamFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64("car-performance", overtaking.DefaultCarPerformance, "Car performance multiplier")
	flags.Float64("track-difficulty", overtaking.DefaultTrackDifficulty, "Track difficulty in [0,1]")
	flags.Float64("driver-aggressiveness", overtaking.DefaultDriverAggressiveness, "Attacking driver aggressiveness in [0,1]")
	flags.Float64("driver-defensiveness", overtaking.DefaultDriverDefensiveness, "Defending driver skill in [0,1]")
	flags.Float64("weather-condition", overtaking.DefaultWeatherCondition, "Weather condition in (0,1], 1 is dry")
	flags.Int("simulations", overtaking.DefaultSimulations, "Trials per section")
	flags.Int("sections", overtaking.DefaultSections, "Number of track sections")
	flags.Float64Slice("overtake-zones", overtaking.DefaultOvertakeZones(), "Normalized positions of overtake zones")
}

// paramsFromFlags returns Params holding only the flags set on the command line
func paramsFromFlags(cmd *cobra.Command) (overtaking.Params, error) {
	var params overtaking.Params
	flags := cmd.Flags()

	floats := map[string]**float64{
		"car-performance":       &params.CarPerformance,
		"track-difficulty":      &params.TrackDifficulty,
		"driver-aggressiveness": &params.DriverAggressiveness,
		"driver-defensiveness":  &params.DriverDefensiveness,
		"weather-condition":     &params.WeatherCondition,
	}
	for name, dst := range floats {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetFloat64(name)
		if err != nil {
			return params, err
		}
		*dst = overtaking.Float(v)
	}

	ints := map[string]**int{
		"simulations": &params.Simulations,
		"sections":    &params.Sections,
	}
	for name, dst := range ints {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return params, err
		}
		*dst = overtaking.Int(v)
	}

	if flags.Changed("overtake-zones") {
		zones, err := flags.GetFloat64Slice("overtake-zones")
		if err != nil {
			return params, err
		}
		params.OvertakeZones = zones
	}
	return params, nil
}
