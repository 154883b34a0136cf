package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/analysis"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/engine"
	"github.com/Rrens/health-insights/internal/ratelimit"
	"github.com/Rrens/health-insights/internal/report"
	"github.com/Rrens/health-insights/internal/usersession"
)

// ExportFilename is the download name of an exported analysis history
const ExportFilename = "analysis_history.json"

// UploadedReportType is recorded when an uploaded report has no name
const UploadedReportType = "Uploaded Report"

// HistoryNotSavedNotice accompanies an analysis that was stored in the
// conversation but is missing from the exportable history
const HistoryNotSavedNotice = "analysis saved to the conversation but not added to the export history"

// AnalysisService runs the analysis pipeline: quota gate, engine dispatch,
// section parsing and persistence into the conversation
type AnalysisService struct {
	conversations *ConversationService
	store         domain.ConversationStore
	limiter       ratelimit.Limiter
	analyzer      engine.Analyzer
	sessions      usersession.Store
	timeout       time.Duration
	maxReport     int64
	now           func() time.Time
}

// NewAnalysisService creates a new analysis service. A zero timeout leaves
// the engine call bounded only by the request context.
func NewAnalysisService(
	conversations *ConversationService,
	store domain.ConversationStore,
	limiter ratelimit.Limiter,
	analyzer engine.Analyzer,
	sessions usersession.Store,
	timeout time.Duration,
) *AnalysisService {
	return &AnalysisService{
		conversations: conversations,
		store:         store,
		limiter:       limiter,
		analyzer:      analyzer,
		sessions:      sessions,
		timeout:       timeout,
		now:           time.Now,
	}
}

// WithMaxReportBytes caps the size of submitted report text. Zero disables
// the check.
func (s *AnalysisService) WithMaxReportBytes(n int64) *AnalysisService {
	s.maxReport = n
	return s
}

// MaxReportBytes returns the report text limit, or zero when unbounded
func (s *AnalysisService) MaxReportBytes() int64 {
	return s.maxReport
}

// Submit analyzes one report for the user.
//
// Validation and quota failures return before anything is written. Once the
// quota slot is taken, the intent message is written before the engine is
// called, so a failed analysis leaves exactly that message behind.
func (s *AnalysisService) Submit(ctx context.Context, userID uuid.UUID, req domain.AnalysisRequest) (*domain.AnalysisOutcome, error) {
	logger := log.With().Str("user_id", userID.String()).Logger()
	uid := userID.String()

	reportText, reportType, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	session, err := s.conversations.ResolveSession(ctx, userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("session_id", session.ID.String()).Logger()

	if _, err := s.limiter.Check(ctx, uid); err != nil {
		if errors.Is(err, domain.ErrRateLimitExceeded) {
			logger.Info().Msg("Analysis rejected by rate limit")
			return nil, err
		}
		// The pre-check is advisory; CheckAndConsume below is authoritative
		logger.Warn().Err(err).Msg("Rate limit pre-check unavailable")
	}
	transition(&logger, domain.StateRateChecked)

	if _, err := s.limiter.CheckAndConsume(ctx, uid); err != nil {
		if errors.Is(err, domain.ErrRateLimitExceeded) {
			logger.Info().Msg("Analysis rejected by rate limit")
			return nil, err
		}
		return nil, fmt.Errorf("%w: rate limiter unavailable: %w", domain.ErrStore, err)
	}

	intent := &domain.Message{
		ID:        uuid.New(),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   "Analyzing report for patient: " + strings.TrimSpace(req.PatientName),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, intent); err != nil {
		if rerr := s.limiter.Release(context.WithoutCancel(ctx), uid); rerr != nil {
			logger.Error().Err(rerr).Msg("Failed to release rate limit slot")
		}
		return nil, err
	}
	transition(&logger, domain.StateDispatched)

	engineCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		engineCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := s.analyzer.Analyze(engineCtx, engine.Request{
		PatientName: strings.TrimSpace(req.PatientName),
		Age:         req.Age,
		Gender:      req.Gender,
		ReportText:  reportText,
	})
	if !result.Success {
		transition(&logger, domain.StateFailed)
		logger.Error().Str("error", result.Error).Msg("Analysis engine failed")
		outcome := &domain.AnalysisOutcome{State: domain.StateFailed, LastError: result.Error}
		return outcome, fmt.Errorf("%w: %s", domain.ErrEngine, result.Error)
	}

	parsed := analysis.Parse(result.Content)
	if !parsed.Complete() {
		logger.Warn().Strs("missing", parsed.Missing).Msg("Analysis response is missing sections")
	}
	transition(&logger, domain.StateParsed)

	record := domain.AnalysisRecord{
		UserID:      userID,
		SessionID:   session.ID,
		PatientName: strings.TrimSpace(req.PatientName),
		Age:         req.Age,
		Gender:      req.Gender,
		ReportType:  reportType,
		Analysis:    parsed.Sections,
		AnalyzedAt:  s.now().UTC(),
	}
	rendered := analysis.Render(parsed.Sections, result.ModelUsed)

	reply := &domain.Message{
		ID:        uuid.New(),
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   rendered,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, reply); err != nil {
		transition(&logger, domain.StateFailed)
		logger.Error().Err(err).Msg("Failed to persist analysis")
		return &domain.AnalysisOutcome{State: domain.StateFailed, LastError: err.Error()}, err
	}

	outcome := &domain.AnalysisOutcome{
		State:        domain.StatePersisted,
		Record:       &record,
		LastResult:   rendered,
		ModelUsed:    result.ModelUsed,
		HistorySaved: true,
	}
	if err := s.sessions.AppendHistory(ctx, userID, record); err != nil {
		logger.Error().Err(err).Msg("Failed to append analysis history")
		outcome.HistorySaved = false
		outcome.Notice = HistoryNotSavedNotice
	}
	transition(&logger, domain.StatePersisted)

	return outcome, nil
}

// normalize validates the request and resolves the report text and type
func (s *AnalysisService) normalize(req domain.AnalysisRequest) (text, reportType string, err error) {
	if err := Validate(req); err != nil {
		return "", "", err
	}

	switch req.ReportSource {
	case domain.ReportSourceSample:
		sample := report.Sample()
		return sample.Text, sample.Name, nil
	default:
		text = strings.TrimSpace(req.ReportText)
		if text == "" {
			return "", "", domain.NewValidationError("report_text", "is required")
		}
		if s.maxReport > 0 && int64(len(text)) > s.maxReport {
			return "", "", domain.NewValidationError("report_text",
				fmt.Sprintf("must not exceed %dMB", s.maxReport>>20))
		}
		reportType = strings.TrimSpace(req.ReportName)
		if reportType == "" {
			reportType = UploadedReportType
		}
		return text, reportType, nil
	}
}

func transition(logger *zerolog.Logger, state domain.AnalysisState) {
	logger.Debug().Str("state", string(state)).Msg("Analysis state changed")
}

// RateStatus reports the user's quota without consuming it
func (s *AnalysisService) RateStatus(ctx context.Context, userID uuid.UUID) (ratelimit.Status, error) {
	status, err := s.limiter.Check(ctx, userID.String())
	if err != nil && !errors.Is(err, domain.ErrRateLimitExceeded) {
		return status, fmt.Errorf("%w: rate limiter unavailable: %w", domain.ErrStore, err)
	}
	return status, nil
}

// History returns the analyses of the current sign-in in submission order
func (s *AnalysisService) History(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisRecord, error) {
	records, err := s.sessions.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	return records, nil
}

// Export renders the history as an indented JSON document
func (s *AnalysisService) Export(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	records, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis history: %w", err)
	}
	return data, nil
}
