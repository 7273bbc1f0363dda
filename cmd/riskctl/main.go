// Package main provides riskctl, a CLI for running the risk engine offline
// against a local accident CSV. Useful for dataset sanity checks before a
// deploy and for reproducing API answers without a running server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roadrisk/roadrisk/internal/accident"
	"github.com/roadrisk/roadrisk/internal/risk"
)

var (
	datasetPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "riskctl",
	Short: "Offline accident-risk queries against a local dataset",
	Long:  `riskctl loads an accident CSV and answers the same risk queries as the API server, without network or auth.`,
}

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List high-risk accident clusters",
	RunE:  runAreas,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a route between two coordinates",
	RunE:  runScore,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the dataset: columns, coordinates, sample rows",
	RunE:  runInfo,
}

var (
	radiusKm float64
	startLat float64
	startLng float64
	endLat   float64
	endLng   float64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "data/accidents.csv", "Accident CSV path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	areasCmd.Flags().Float64VarP(&radiusKm, "radius", "r", risk.DefaultClusterRadiusKm, "Cluster radius in km")

	scoreCmd.Flags().Float64Var(&startLat, "start-lat", 0, "Route start latitude")
	scoreCmd.Flags().Float64Var(&startLng, "start-lng", 0, "Route start longitude")
	scoreCmd.Flags().Float64Var(&endLat, "end-lat", 0, "Route end latitude")
	scoreCmd.Flags().Float64Var(&endLng, "end-lng", 0, "Route end longitude")
	for _, flag := range []string{"start-lat", "start-lng", "end-lat", "end-lng"} {
		_ = scoreCmd.MarkFlagRequired(flag)
	}

	rootCmd.AddCommand(areasCmd, scoreCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEngine loads the CSV and builds an engine over it.
func loadEngine(ctx context.Context) (*risk.Engine, error) {
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	store := accident.NewStore(accident.StoreConfig{
		Source: accident.NewFileSource(datasetPath),
		Logger: logger,
	})
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading %s: %w", datasetPath, err)
	}

	return risk.NewEngine(risk.Config{
		Store:  store,
		Logger: logger,
	}), nil
}

func runAreas(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	areas, err := engine.HighRiskAreas(cmd.Context(), radiusKm)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"radiusKm": radiusKm,
		"count":    len(areas),
		"areas":    areas,
	})
}

func runScore(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	result, err := engine.ScoreRoute(cmd.Context(), risk.Route{
		StartLat: startLat,
		StartLng: startLng,
		EndLat:   endLat,
		EndLng:   endLng,
	})
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	info, err := engine.DatasetInfo(cmd.Context())
	if err != nil {
		return err
	}

	return printJSON(info)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
