package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/core"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
	"github.com/pndinxx/courserank/internal/server"
)

func main() {
	var cfgPath string
	var root = &cobra.Command{Use: "courserank"}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serveAddr == "" {
				serveAddr = os.Getenv("COURSERANK_HTTP_ADDR")
			}
			return server.Run(config.LoadConfig(cfgPath), serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	var list string
	var ask = &cobra.Command{
		Use:   "ask [query]",
		Short: "Classify a query and run the matching pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cfgPath)
			if err != nil {
				return err
			}
			res, err := orch.Process(cmd.Context(), args[0], list)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	ask.Flags().StringVar(&list, "list", "default", "tier list id")

	var analyze = &cobra.Command{
		Use:   "analyze [course or teacher]",
		Short: "Score one course or teacher and place it on the tier list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cfgPath)
			if err != nil {
				return err
			}
			rec := core.IntentRecord{Intent: core.IntentAnalyze, Keywords: args[0]}
			res, err := orch.Analyze(cmd.Context(), rec, list)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	analyze.Flags().StringVar(&list, "list", "default", "tier list id")

	var recommend = &cobra.Command{
		Use:   "recommend [topic]",
		Short: "Recommend courses for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cfgPath)
			if err != nil {
				return err
			}
			rec := core.IntentRecord{Intent: core.IntentRecommend, Keywords: args[0]}
			res, err := orch.Recommend(cmd.Context(), rec)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	var reset = &cobra.Command{
		Use:   "reset [list]",
		Short: "Clear a tier list canvas and its counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cfgPath)
			if err != nil {
				return err
			}
			if err := orch.TierList().Reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			log.Printf("list %s reset", args[0])
			return nil
		},
	}

	root.AddCommand(serve, ask, analyze, recommend, reset)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOrchestrator(cfgPath string) (*core.Orchestrator, error) {
	cfg := config.LoadConfig(cfgPath)
	tele := telemetry.New(cfg.Telemetry, nil)
	return core.NewOrchestrator(context.Background(), cfg, tele, nil)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
