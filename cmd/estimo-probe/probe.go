package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estimo-immo/estimo-go/pkg/estimo"
)

// ProbeResult is the outcome of one check
type ProbeResult struct {
	Check      string        `json:"check"`
	Passed     bool          `json:"passed"`
	Result     interface{}   `json:"result,omitempty"`
	Kind       string        `json:"kind,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Retries    int           `json:"retries,omitempty"`
	Error      string        `json:"error,omitempty"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ProbeReport is the full probe run
type ProbeReport struct {
	Timestamp   time.Time     `json:"timestamp"`
	BaseURL     string        `json:"base_url"`
	TotalChecks int           `json:"total_checks"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	Results     []ProbeResult `json:"results"`
}

type checkFunc func(ctx context.Context, c *estimo.Client) (interface{}, error)

// Prober runs checks against one client
type Prober struct {
	client *estimo.Client
	logger estimo.Logger
	checks map[string]checkFunc
}

// NewProber registers the built in checks
func NewProber(client *estimo.Client, logger estimo.Logger) *Prober {
	return &Prober{
		client: client,
		logger: logger,
		checks: map[string]checkFunc{
			"health": func(ctx context.Context, c *estimo.Client) (interface{}, error) {
				return c.Health.Check(ctx)
			},
			"me": func(ctx context.Context, c *estimo.Client) (interface{}, error) {
				return c.Auth.Me(ctx)
			},
			"interest-rate": func(ctx context.Context, c *estimo.Client) (interface{}, error) {
				return c.Analysis.ScoreInterestRate(ctx, &estimo.InterestRateParams{
					LoanAmount:           200000,
					DurationYears:        20,
					AnnualIncome:         55000,
					PersonalContribution: 20000,
					PropertyPrice:        220000,
				})
			},
			"timeline": func(ctx context.Context, c *estimo.Client) (interface{}, error) {
				return c.Analysis.EstimateTimeline(ctx, &estimo.TimelineParams{
					ProjectType: "renovation",
					SurfaceM2:   75,
				})
			},
			"capex": func(ctx context.Context, c *estimo.Client) (interface{}, error) {
				return c.Analysis.EstimateCapex(ctx, &estimo.CapexParams{
					PropertyType: "apartment",
					SurfaceM2:    75,
					Condition:    "average",
					PostalCode:   "75011",
				})
			},
		},
	}
}

// Run executes the named checks in order. A cancelled context stops the run.
func (p *Prober) Run(ctx context.Context, names []string) *ProbeReport {
	report := &ProbeReport{
		Timestamp: time.Now(),
		BaseURL:   p.client.BaseURL(),
		Results:   make([]ProbeResult, 0, len(names)),
	}

	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		result := p.runCheck(ctx, name)
		report.Results = append(report.Results, result)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	report.TotalChecks = len(report.Results)
	if report.TotalChecks > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalChecks) * 100
	}
	return report
}

func (p *Prober) runCheck(ctx context.Context, name string) ProbeResult {
	start := time.Now()
	result := ProbeResult{Check: name}

	check, ok := p.checks[name]
	if !ok {
		result.Error = fmt.Sprintf("unknown check: %s", name)
		return result
	}

	p.logger.Debug("Running check", "check", name)
	out, err := check(ctx, p.client)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		result.Message = estimo.UserMessage(err)
		var apiErr *estimo.Error
		if errors.As(err, &apiErr) {
			result.Kind = string(apiErr.Kind)
			result.StatusCode = apiErr.StatusCode
			result.Retries = apiErr.Retries
		}
		p.logger.Warn("Check failed", "check", name, "error", err)
		return result
	}

	result.Passed = true
	result.Result = out
	return result
}
