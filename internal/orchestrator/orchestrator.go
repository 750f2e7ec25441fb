package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/johnayoung/llm-fanout/internal/provider"
	"golang.org/x/sync/errgroup"
)

// QueryResult is the aggregate outcome of one fan-out. Responses holds
// one entry per held client, in construction order regardless of which
// client finished first. len(Responses) == SuccessCount + ErrorCount.
type QueryResult struct {
	Question       string              `json:"question"`
	RunID          string              `json:"run_id"`
	Responses      []provider.Response `json:"responses"`
	SuccessCount   int                 `json:"success_count"`
	ErrorCount     int                 `json:"error_count"`
	TotalLatencyMS int64               `json:"total_latency_ms"`
	CompletedAt    time.Time           `json:"completed_at"`
}

// ConnectionStatus is one client's connectivity check outcome.
type ConnectionStatus struct {
	Name       string `json:"name"`
	ProviderID string `json:"provider_id"`
	OK         bool   `json:"ok"`
}

// ClientInfo identifies one held client.
type ClientInfo struct {
	Name       string `json:"name"`
	ProviderID string `json:"provider_id"`
}

// Status is a synchronous snapshot of the held client set. It performs
// no I/O and is safe to call from health checks.
type Status struct {
	Count   int          `json:"count"`
	Clients []ClientInfo `json:"clients"`
}

// Orchestrator fans one question out to every configured client
// concurrently and aggregates the answers. The client list is fixed at
// construction and read-only afterward; one client's failure never
// affects another's result.
type Orchestrator struct {
	clients []provider.Client
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for fan-out diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an orchestrator over the configured subset of clients.
// Clients reporting IsConfigured() == false are dropped; the relative
// order of the rest is preserved.
func New(clients []provider.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	for _, c := range clients {
		if !c.IsConfigured() {
			o.logger.Debug("skipping unconfigured client", "provider", c.ProviderID())
			continue
		}
		o.clients = append(o.clients, c)
	}

	return o
}

// Ask dispatches the question to every held client concurrently and
// waits for all of them to settle. It never fails: per-client errors
// land in the matching Response, and a client that panics (violating
// the Query contract) is absorbed into a synthetic error Response.
func (o *Orchestrator) Ask(ctx context.Context, question, systemPrompt string) QueryResult {
	start := time.Now()
	responses := make([]provider.Response, len(o.clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range o.clients {
		i, c := i, c
		g.Go(func() error {
			responses[i] = o.safeQuery(gctx, c, question, systemPrompt)
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	success := 0
	for _, r := range responses {
		if r.OK() {
			success++
		}
	}

	result := QueryResult{
		Question:       question,
		RunID:          uuid.NewString(),
		Responses:      responses,
		SuccessCount:   success,
		ErrorCount:     len(responses) - success,
		TotalLatencyMS: time.Since(start).Milliseconds(),
		CompletedAt:    time.Now(),
	}

	o.logger.Debug("fan-out complete",
		"run_id", result.RunID,
		"clients", len(responses),
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount,
		"total_ms", result.TotalLatencyMS)

	return result
}

// safeQuery invokes one client's Query, converting a panic into an
// error Response carrying the client's identity.
func (o *Orchestrator) safeQuery(ctx context.Context, c provider.Client, question, systemPrompt string) (resp provider.Response) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("client panicked during query",
				"provider", c.ProviderID(), "panic", r)
			resp = provider.Response{
				Name:        c.Name(),
				ProviderID:  c.ProviderID(),
				CompletedAt: time.Now(),
				Err:         fmt.Sprint(r),
			}
		}
	}()

	return c.Query(ctx, question, systemPrompt)
}

// TestConnections probes every held client concurrently. A client that
// panics reports ok=false; order matches the client list.
func (o *Orchestrator) TestConnections(ctx context.Context) []ConnectionStatus {
	statuses := make([]ConnectionStatus, len(o.clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range o.clients {
		i, c := i, c
		g.Go(func() error {
			statuses[i] = ConnectionStatus{
				Name:       c.Name(),
				ProviderID: c.ProviderID(),
				OK:         o.safeTest(gctx, c),
			}
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

func (o *Orchestrator) safeTest(ctx context.Context, c provider.Client) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("client panicked during connection test",
				"provider", c.ProviderID(), "panic", r)
			ok = false
		}
	}()

	return c.TestConnection(ctx)
}

// Status reports the held client set without performing any I/O.
func (o *Orchestrator) Status() Status {
	s := Status{
		Count:   len(o.clients),
		Clients: make([]ClientInfo, 0, len(o.clients)),
	}
	for _, c := range o.clients {
		s.Clients = append(s.Clients, ClientInfo{Name: c.Name(), ProviderID: c.ProviderID()})
	}
	return s
}
