// Package gateway binds validation, execution and normalization into one
// guarded operation per cloud provider.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skyhook-labs/cloudgate/pkg/gateway/policy"
	"github.com/skyhook-labs/cloudgate/pkg/runner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// helpTruncateLimit caps help passthrough output.
const helpTruncateLimit = 2000

// RejectionError reports a command the policy refused to execute. The
// executor is never invoked for these.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

// Executor runs a validated argv. Satisfied by *runner.Runner; tests
// substitute a spy to prove rejected commands never reach it.
type Executor interface {
	Run(ctx context.Context, argv []string) (runner.Result, error)
}

// AuditEntry is one executed (or attempted) command.
type AuditEntry struct {
	Time     time.Time
	Provider string
	Command  string
	Verb     string
	Outcome  string
	ExitCode int
	Duration time.Duration
}

// AuditSink records entries. Implementations must be safe for concurrent use.
type AuditSink interface {
	Record(AuditEntry)
}

// RejectionNotifier is alerted when the policy blocks a command.
type RejectionNotifier interface {
	NotifyRejection(provider, command, reason string)
}

// Gateway is one provider's validate -> execute -> normalize pipeline.
// Everything it holds is immutable after New; requests run concurrently
// against it without coordination.
type Gateway struct {
	desc      Descriptor
	validator *policy.Validator
	exec      Executor
	audit     AuditSink
	notifier  RejectionNotifier
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option overrides a Gateway collaborator.
type Option func(*Gateway)

// WithAudit attaches an audit sink.
func WithAudit(sink AuditSink) Option {
	return func(g *Gateway) { g.audit = sink }
}

// WithNotifier attaches a rejection notifier.
func WithNotifier(n RejectionNotifier) Option {
	return func(g *Gateway) { g.notifier = n }
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// New assembles a Gateway for one provider. rules may be nil.
func New(desc Descriptor, exec Executor, rules *policy.RuleEngine, opts ...Option) *Gateway {
	g := &Gateway{
		desc:      desc,
		validator: policy.NewValidator(string(desc.Provider), desc.Table, rules),
		exec:      exec,
		logger:    slog.Default(),
		tracer:    otel.Tracer("cloudgate/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Provider reports which cloud this gateway fronts.
func (g *Gateway) Provider() Provider { return g.desc.Provider }

// Check exposes the validator verdict without executing anything.
func (g *Gateway) Check(raw string) policy.Verdict {
	return g.validator.Check(raw)
}

// Run takes a raw command string through the full pipeline. A non-nil error
// is always a *RejectionError: the command was refused before execution.
// Everything that actually ran, including timeouts and non-zero exits,
// comes back as a Response.
func (g *Gateway) Run(ctx context.Context, raw string) (Response, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.run", trace.WithAttributes(
		attribute.String("cloud.provider", string(g.desc.Provider)),
	))
	defer span.End()

	verdict := g.validator.Check(raw)
	if !verdict.Allowed {
		span.SetStatus(codes.Error, verdict.Reason)
		g.logger.Warn("command rejected", "provider", g.desc.Provider, "reason", verdict.Reason)
		g.record(AuditEntry{
			Time:     time.Now().UTC(),
			Provider: string(g.desc.Provider),
			Command:  strings.TrimSpace(raw),
			Outcome:  "rejected: " + verdict.Reason,
		})
		if g.notifier != nil {
			// Fire and forget; an unreachable webhook must not delay the
			// caller's rejection.
			go g.notifier.NotifyRejection(string(g.desc.Provider), strings.TrimSpace(raw), verdict.Reason)
		}
		return Response{}, &RejectionError{Reason: verdict.Reason}
	}

	// The verdict carries the quote-aware tokenization; re-splitting here
	// would run a different command than the one that was validated.
	argv := append([]string{g.desc.Binary}, verdict.Tokens[1:]...)

	res, err := g.execute(ctx, argv, verdict.Verb)
	if err != nil {
		// Spawn failure: the binary is missing or unrunnable. Surface the
		// diagnostic, not an internal fault.
		span.SetStatus(codes.Error, err.Error())
		return Response{Status: StatusError, Text: err.Error()}, nil
	}

	resp := BuildResponse(res)
	if verdict.Verb == "help" && resp.Status == StatusSuccess && len(resp.Text) > helpTruncateLimit {
		resp.Text = resp.Text[:helpTruncateLimit] + "\n... (truncated)"
	}
	if resp.Status == StatusError {
		span.SetStatus(codes.Error, resp.Text)
	}
	return resp, nil
}

// RunStatus executes one of the descriptor's canned status commands, used by
// doctor checks. Index is clamped by the caller.
func (g *Gateway) RunStatus(ctx context.Context, tail []string) (Response, error) {
	argv := append([]string{g.desc.Binary}, tail...)
	res, err := g.execute(ctx, argv, strings.Join(tail, " "))
	if err != nil {
		return Response{}, err
	}
	return BuildResponse(res), nil
}

// StatusCommands returns the canned doctor check argv tails.
func (g *Gateway) StatusCommands() [][]string {
	return g.desc.StatusCommands
}

func (g *Gateway) execute(ctx context.Context, argv []string, verb string) (runner.Result, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.execute", trace.WithAttributes(
		attribute.String("process.binary", argv[0]),
	))
	defer span.End()

	g.logger.Info("executing", "provider", g.desc.Provider, "verb", verb)
	res, err := g.exec.Run(ctx, argv)

	entry := AuditEntry{
		Time:     time.Now().UTC(),
		Provider: string(g.desc.Provider),
		Command:  strings.Join(argv, " "),
		Verb:     verb,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
	}
	switch {
	case err != nil:
		entry.Outcome = fmt.Sprintf("spawn failed: %v", err)
	case res.TimedOut:
		entry.Outcome = "timeout"
	case res.ExitCode == 0:
		entry.Outcome = "ok"
	default:
		entry.Outcome = "nonzero exit"
	}
	g.record(entry)

	return res, err
}

func (g *Gateway) record(e AuditEntry) {
	if g.audit != nil {
		g.audit.Record(e)
	}
}
