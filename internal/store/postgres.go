package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-conductor/internal/types"
)

const pgUniqueViolation = "23505"

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the result database.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) SaveScoreSummary(ctx context.Context, summary types.InterviewScoreSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interview_score_summaries
		 (id, interview_id, overall_score, narrative_summary, candidate_feedback,
		  anti_cheat_risk, model_version, rubric_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		summary.ID, summary.InterviewID, summary.OverallScore, summary.NarrativeSummary,
		summary.CandidateFeedback, string(summary.AntiCheatRisk), summary.ModelVersion,
		summary.RubricVersion, summary.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &DuplicateScoreError{InterviewID: summary.InterviewID}
		}
		return fmt.Errorf("failed to save score summary: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveDimensionScores(ctx context.Context, scores []types.DimensionScore) error {
	if len(scores) == 0 {
		return nil
	}

	// All rows are written in one transaction so a duplicate anywhere in
	// the batch leaves nothing behind.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, score := range scores {
		quotes, err := json.Marshal(score.CitedQuotes)
		if err != nil {
			return fmt.Errorf("failed to marshal cited quotes: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO dimension_scores
			 (id, interview_id, dimension_key, score, weight_used, evidence, cited_quotes, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			score.ID, score.InterviewID, score.DimensionKey, score.Score,
			score.WeightUsed, score.Evidence, quotes, score.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return &DuplicateScoreError{InterviewID: score.InterviewID, DimensionKey: score.DimensionKey}
			}
			return fmt.Errorf("failed to save dimension score %s: %w", score.DimensionKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dimension scores: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, summary types.InterviewScoreSummary, scores []types.DimensionScore) error {
	// Summary and dimension rows land in one transaction so a failure part
	// way through cannot leave a queryable half-result.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO interview_score_summaries
		 (id, interview_id, overall_score, narrative_summary, candidate_feedback,
		  anti_cheat_risk, model_version, rubric_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		summary.ID, summary.InterviewID, summary.OverallScore, summary.NarrativeSummary,
		summary.CandidateFeedback, string(summary.AntiCheatRisk), summary.ModelVersion,
		summary.RubricVersion, summary.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &DuplicateScoreError{InterviewID: summary.InterviewID}
		}
		return fmt.Errorf("failed to save score summary: %w", err)
	}

	for _, score := range scores {
		quotes, err := json.Marshal(score.CitedQuotes)
		if err != nil {
			return fmt.Errorf("failed to marshal cited quotes: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO dimension_scores
			 (id, interview_id, dimension_key, score, weight_used, evidence, cited_quotes, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			score.ID, score.InterviewID, score.DimensionKey, score.Score,
			score.WeightUsed, score.Evidence, quotes, score.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return &DuplicateScoreError{InterviewID: score.InterviewID, DimensionKey: score.DimensionKey}
			}
			return fmt.Errorf("failed to save dimension score %s: %w", score.DimensionKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit score result: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetScoreSummary(ctx context.Context, interviewID uuid.UUID) (*types.InterviewScoreSummary, error) {
	var (
		summary   types.InterviewScoreSummary
		risk      string
		by        *string
		reason    *string
		appliedAt *time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, interview_id, overall_score, narrative_summary, candidate_feedback,
		        anti_cheat_risk, model_version, rubric_version,
		        override_by, override_reason, override_applied_at, created_at
		 FROM interview_score_summaries WHERE interview_id = $1`,
		interviewID,
	).Scan(&summary.ID, &summary.InterviewID, &summary.OverallScore, &summary.NarrativeSummary,
		&summary.CandidateFeedback, &risk, &summary.ModelVersion, &summary.RubricVersion,
		&by, &reason, &appliedAt, &summary.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "score summary", ID: interviewID}
		}
		return nil, fmt.Errorf("failed to get score summary: %w", err)
	}

	summary.AntiCheatRisk = types.RiskLevel(risk)
	if by != nil && reason != nil {
		override := types.HumanOverride{By: *by, Reason: *reason}
		if appliedAt != nil {
			override.AppliedAt = *appliedAt
		}
		summary.Override = &override
	}
	return &summary, nil
}

func (s *PostgresStore) GetDimensionScores(ctx context.Context, interviewID uuid.UUID) ([]types.DimensionScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, interview_id, dimension_key, score, weight_used, evidence, cited_quotes, created_at
		 FROM dimension_scores WHERE interview_id = $1 ORDER BY dimension_key ASC`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dimension scores: %w", err)
	}
	defer rows.Close()

	var scores []types.DimensionScore
	for rows.Next() {
		var (
			score  types.DimensionScore
			quotes []byte
		)
		if err := rows.Scan(&score.ID, &score.InterviewID, &score.DimensionKey, &score.Score,
			&score.WeightUsed, &score.Evidence, &quotes, &score.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dimension score: %w", err)
		}
		if len(quotes) > 0 {
			if err := json.Unmarshal(quotes, &score.CitedQuotes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal cited quotes: %w", err)
			}
		}
		scores = append(scores, score)
	}
	return scores, nil
}

func (s *PostgresStore) ApplyHumanOverride(ctx context.Context, interviewID uuid.UUID, override types.HumanOverride) (*types.InterviewScoreSummary, error) {
	if err := validateOverride(override); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The audit trail records every override event in full.
	err = tx.QueryRow(ctx,
		`INSERT INTO score_overrides (interview_id, overridden_by, reason, overall_score, summary, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING applied_at`,
		interviewID, override.By, override.Reason, override.OverallScore, override.Summary, override.Feedback,
	).Scan(&override.AppliedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record override: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE interview_score_summaries SET
		   overall_score       = COALESCE($2, overall_score),
		   narrative_summary   = COALESCE($3, narrative_summary),
		   candidate_feedback  = COALESCE($4, candidate_feedback),
		   override_by         = $5,
		   override_reason     = $6,
		   override_applied_at = $7
		 WHERE interview_id = $1`,
		interviewID, override.OverallScore, override.Summary, override.Feedback,
		override.By, override.Reason, override.AppliedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to apply override: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, &NotFoundError{Kind: "score summary", ID: interviewID}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}

	return s.GetScoreSummary(ctx, interviewID)
}

func (s *PostgresStore) AppendTranscriptSegments(ctx context.Context, interviewID uuid.UUID, segments []types.TranscriptSegment) (int, error) {
	if len(segments) == 0 {
		return s.transcriptLength(ctx, interviewID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize appenders per interview so seq assignment cannot race.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, interviewID,
	); err != nil {
		return 0, fmt.Errorf("failed to lock transcript: %w", err)
	}

	var lastSeq int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM transcript_segments WHERE interview_id = $1`,
		interviewID,
	).Scan(&lastSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to read transcript sequence: %w", err)
	}

	for _, seg := range segments {
		lastSeq++
		_, err = tx.Exec(ctx,
			`INSERT INTO transcript_segments
			 (interview_id, seq, speaker, content, start_time_ms, end_time_ms, confidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			interviewID, lastSeq, string(seg.Speaker), seg.Content,
			seg.StartTimeMS, seg.EndTimeMS, seg.Confidence,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append transcript segment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transcript segments: %w", err)
	}
	return lastSeq, nil
}

func (s *PostgresStore) GetTranscript(ctx context.Context, interviewID uuid.UUID) (types.Transcript, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT speaker, content, start_time_ms, end_time_ms, confidence
		 FROM transcript_segments WHERE interview_id = $1 ORDER BY seq ASC`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	defer rows.Close()

	var transcript types.Transcript
	for rows.Next() {
		var (
			seg     types.TranscriptSegment
			speaker string
		)
		if err := rows.Scan(&speaker, &seg.Content, &seg.StartTimeMS, &seg.EndTimeMS, &seg.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan transcript segment: %w", err)
		}
		seg.Speaker = types.Speaker(speaker)
		transcript = append(transcript, seg)
	}
	return transcript, nil
}

func (s *PostgresStore) SaveProgressSnapshot(ctx context.Context, interviewID uuid.UUID, progress types.Progress) error {
	covered, err := json.Marshal(progress.CompetenciesCovered)
	if err != nil {
		return fmt.Errorf("failed to marshal covered competencies: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO progress_snapshots (interview_id, questions_asked, phase, competencies_covered)
		 VALUES ($1, $2, $3, $4)`,
		interviewID, progress.QuestionsAsked, progress.Phase.String(), covered,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestProgress(ctx context.Context, interviewID uuid.UUID) (*types.Progress, error) {
	var (
		progress  types.Progress
		phaseName string
		covered   []byte
	)

	err := s.pool.QueryRow(ctx,
		`SELECT questions_asked, phase, competencies_covered
		 FROM progress_snapshots WHERE interview_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		interviewID,
	).Scan(&progress.QuestionsAsked, &phaseName, &covered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "progress snapshot", ID: interviewID}
		}
		return nil, fmt.Errorf("failed to get progress snapshot: %w", err)
	}

	phase, err := types.ParsePhase(phaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored phase: %w", err)
	}
	progress.Phase = phase

	if len(covered) > 0 {
		if err := json.Unmarshal(covered, &progress.CompetenciesCovered); err != nil {
			return nil, fmt.Errorf("failed to unmarshal covered competencies: %w", err)
		}
	}
	return &progress, nil
}

func (s *PostgresStore) transcriptLength(ctx context.Context, interviewID uuid.UUID) (int, error) {
	var lastSeq int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM transcript_segments WHERE interview_id = $1`,
		interviewID,
	).Scan(&lastSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to read transcript sequence: %w", err)
	}
	return lastSeq, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
