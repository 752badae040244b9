package main

import (
	"context"
	"log"
	"os"

	"github.com/estimo-immo/estimo-go/internal/config"
	"github.com/estimo-immo/estimo-go/internal/logging"
	"github.com/estimo-immo/estimo-go/pkg/estimo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Load(os.Getenv("ESTIMO_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// stdout carries the MCP stream; logs go to stderr
	logger := logging.New(cfg.Log.Level, false)

	st, closeStore, err := cfg.OpenStore(logger)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer func() { _ = closeStore() }()

	client, err := estimo.NewClient(&estimo.ClientOptions{
		BaseURL:     cfg.API.URL,
		Store:       st,
		Navigator:   estimo.NoopNavigator{},
		LoginRoute:  cfg.Auth.LoginRoute,
		RetryPolicy: cfg.RetryPolicy(),
		Logger:      logger,
		SentryDSN:   cfg.Sentry.DSN,
	})
	if err != nil {
		log.Fatalf("failed to initialize Estimo client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "estimo",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, client)

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *estimo.Client) {
	tools := &estimoTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "health_check",
		Description: "Check that the Estimo backend is reachable. Returns the backend status and version.",
	}, tools.HealthCheck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_interest_rate",
		Description: "Score the financing of a real estate project. Returns a score, an estimated rate, a grade and the debt ratio.",
	}, tools.ScoreInterestRate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "estimate_timeline",
		Description: "Estimate the schedule of a renovation, construction or extension project, phase by phase.",
	}, tools.EstimateTimeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "estimate_capex",
		Description: "Estimate the works budget for a property, with a breakdown per category.",
	}, tools.EstimateCapex)
}
