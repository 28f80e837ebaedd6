// Package application wires the stores, the command/query handlers, and
// the event bus into one engine the conversational layer talks to.
package application

import (
	"context"

	"github.com/awslearn-hub/tutor-core/internal/application/command"
	"github.com/awslearn-hub/tutor-core/internal/application/query"
	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/messaging"
	"github.com/awslearn-hub/tutor-core/internal/store"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Options configures engine construction.
type Options struct {
	// Store holds state store tunables. Zero value gets defaults.
	Store store.Config

	// Scoring holds topic score update tunables. Zero value gets defaults.
	Scoring command.ScoringConfig

	// ActiveWindowDays is the default trailing window for the
	// active-learner count in global statistics. Zero gets the query
	// package default.
	ActiveWindowDays int

	// AsyncEvents dispatches bus events in goroutines. Synchronous
	// delivery is deterministic and preferred in tests.
	AsyncEvents bool

	// Logger for all components. Nil means no output.
	Logger *logger.Logger
}

// Engine is the learner-state and feedback engine facade. One instance per
// process, explicitly constructed; all operations are safe for concurrent
// use.
type Engine struct {
	states    *store.StateStore
	feedbacks *store.FeedbackStore
	bus       *messaging.EventBus
	log       *logger.Logger

	recordInteraction *command.RecordInteractionHandler
	markLabComplete   *command.MarkLabCompleteHandler
	recordSessionTime *command.RecordSessionTimeHandler
	recordFeedback    *command.RecordFeedbackHandler

	progressReport   *query.ProgressReportHandler
	globalStats      *query.GlobalStatsHandler
	feedbackSummary  *query.FeedbackSummaryHandler
	recommendTopic   *query.RecommendTopicHandler
	feedbackInsights *query.FeedbackInsightsHandler
	feedbackHistory  *query.FeedbackHistoryHandler
	exportFeedback   *query.ExportFeedbackHandler
}

// NewEngine constructs an engine over the given persistence adapters.
func NewEngine(repo learner.Repository, flog feedback.Log, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	storeCfg := opts.Store
	if storeCfg == (store.Config{}) {
		storeCfg = store.DefaultConfig()
	}

	locks := store.NewKeyLocks()
	states := store.NewStateStore(repo, locks, storeCfg, log)
	feedbacks := store.NewFeedbackStore(flog, locks, storeCfg, log)
	bus := messaging.NewEventBus(messaging.Config{Async: opts.AsyncEvents, Logger: log})

	return &Engine{
		states:    states,
		feedbacks: feedbacks,
		bus:       bus,
		log:       log,

		recordInteraction: command.NewRecordInteractionHandler(states, bus, opts.Scoring),
		markLabComplete:   command.NewMarkLabCompleteHandler(states, bus),
		recordSessionTime: command.NewRecordSessionTimeHandler(states, bus),
		recordFeedback:    command.NewRecordFeedbackHandler(feedbacks, bus),

		progressReport:   query.NewProgressReportHandler(states),
		globalStats:      query.NewGlobalStatsHandler(states, opts.ActiveWindowDays),
		feedbackSummary:  query.NewFeedbackSummaryHandler(feedbacks),
		recommendTopic:   query.NewRecommendTopicHandler(states),
		feedbackInsights: query.NewFeedbackInsightsHandler(feedbacks),
		feedbackHistory:  query.NewFeedbackHistoryHandler(feedbacks),
		exportFeedback:   query.NewExportFeedbackHandler(feedbacks),
	}
}

// WarmUp primes both stores from persistence. Call once at startup so
// cross-learner statistics cover the full population.
func (e *Engine) WarmUp(ctx context.Context) error {
	if err := e.states.WarmUp(ctx); err != nil {
		return err
	}
	return e.feedbacks.WarmUp(ctx)
}

// Subscribe registers a handler for a domain event type.
func (e *Engine) Subscribe(t shared.EventType, h shared.EventHandler) error {
	return e.bus.Subscribe(t, h)
}

// SubscribeAll registers a handler for every domain event.
func (e *Engine) SubscribeAll(h shared.EventHandler) error {
	return e.bus.SubscribeAll(h)
}

// Close flushes the event bus.
func (e *Engine) Close() error {
	return e.bus.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

// RecordInteraction records one question against a topic.
func (e *Engine) RecordInteraction(ctx context.Context, cmd command.RecordInteractionCommand) (*command.RecordInteractionResult, error) {
	return e.recordInteraction.Handle(ctx, cmd)
}

// MarkLabComplete marks a lab completed, idempotently.
func (e *Engine) MarkLabComplete(ctx context.Context, cmd command.MarkLabCompleteCommand) (*command.MarkLabCompleteResult, error) {
	return e.markLabComplete.Handle(ctx, cmd)
}

// RecordSessionTime accumulates a reported session duration.
func (e *Engine) RecordSessionTime(ctx context.Context, cmd command.RecordSessionTimeCommand) (*command.RecordSessionTimeResult, error) {
	return e.recordSessionTime.Handle(ctx, cmd)
}

// RecordFeedback appends a validated feedback entry.
func (e *Engine) RecordFeedback(ctx context.Context, cmd command.RecordFeedbackCommand) (*command.RecordFeedbackResult, error) {
	return e.recordFeedback.Handle(ctx, cmd)
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// ProgressReport returns a read-only view of one learner's record.
func (e *Engine) ProgressReport(ctx context.Context, q query.ProgressReportQuery) (*query.ProgressReportDTO, error) {
	return e.progressReport.Handle(ctx, q)
}

// GlobalStats returns cross-learner aggregates.
func (e *Engine) GlobalStats(ctx context.Context, q query.GlobalStatsQuery) (*query.GlobalStatsDTO, error) {
	return e.globalStats.Handle(ctx, q)
}

// FeedbackSummary aggregates feedback inside a trailing window.
func (e *Engine) FeedbackSummary(ctx context.Context, q query.FeedbackSummaryQuery) (*feedback.Summary, error) {
	return e.feedbackSummary.Handle(ctx, q)
}

// RecommendTopic picks the topic a learner should work on next.
func (e *Engine) RecommendTopic(ctx context.Context, q query.RecommendTopicQuery) (*query.RecommendTopicDTO, error) {
	return e.recommendTopic.Handle(ctx, q)
}

// FeedbackInsights returns trend analysis over the full feedback history.
func (e *Engine) FeedbackInsights(ctx context.Context, q query.FeedbackInsightsQuery) (*feedback.Insights, error) {
	return e.feedbackInsights.Handle(ctx, q)
}

// FeedbackHistory lists one learner's feedback entries.
func (e *Engine) FeedbackHistory(ctx context.Context, q query.FeedbackHistoryQuery) ([]*feedback.Entry, error) {
	return e.feedbackHistory.Handle(ctx, q)
}

// ExportFeedback serializes the feedback history as JSON or CSV.
func (e *Engine) ExportFeedback(ctx context.Context, q query.ExportFeedbackQuery) ([]byte, error) {
	return e.exportFeedback.Handle(ctx, q)
}
