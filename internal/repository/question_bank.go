package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/repository/models"
	"bloomforge/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	selectSetColumns = `SELECT id "id", session_id "session_id", generation_method "generation_method",
		requirements "requirements", question_count "question_count", total_marks "total_marks",
		created_at "created_at" FROM question_sets`

	selectQuestionColumns = `SELECT id "id", set_id "set_id", position "position", question_type "question_type",
		bloom_level "bloom_level", bloom_code "bloom_code", difficulty "difficulty", content "content",
		options "options", correct_answer "correct_answer", explanation "explanation", answer "answer",
		marks "marks", source "source" FROM questions`

	insertSet = `INSERT INTO question_sets (id, session_id, generation_method, requirements, question_count, total_marks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertQuestion = `INSERT INTO questions (id, set_id, position, question_type, bloom_level, bloom_code, difficulty,
		content, options, correct_answer, explanation, answer, marks, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertExamPaper = `INSERT INTO exam_papers (id, session_id, title, total_marks, paper, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
)

// QuestionBankAdapter implements domain.QuestionBankRepository using sqlx.
type QuestionBankAdapter struct {
	db *sqlx.DB
}

func NewQuestionBankAdapter(db *sqlx.DB) domain.QuestionBankRepository {
	return &QuestionBankAdapter{db: db}
}

// SaveQuestionSet inserts the set and its questions. Callers that need the
// inserts to be atomic run it inside TransactionManager.WithTransaction.
func (a *QuestionBankAdapter) SaveQuestionSet(ctx context.Context, set *domain.QuestionSet) error {
	exec := GetExecutor(ctx, a.db)

	if set.ID == "" {
		set.ID = util.NewULID()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	reqJSON, err := json.Marshal(set.Requirements)
	if err != nil {
		return fmt.Errorf("failed to encode requirements: %w", err)
	}

	if _, err := exec.ExecContext(ctx, exec.Rebind(insertSet),
		set.ID, set.SessionID, set.GenerationMethod, string(reqJSON),
		len(set.Questions), set.TotalMarks, set.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert question set: %w", err)
	}

	for i, q := range set.Questions {
		m := toModelQuestion(set.ID, i, q)
		if _, err := exec.ExecContext(ctx, exec.Rebind(insertQuestion),
			m.ID, m.SetID, m.Position, m.Type, m.BloomLevel, m.BloomCode, m.Difficulty,
			m.Content, m.Options, m.CorrectAnswer, m.Explanation, m.Answer, m.Marks, m.Source); err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i+1, err)
		}
	}
	return nil
}

// ListQuestionSets returns the newest sets of a session first.
func (a *QuestionBankAdapter) ListQuestionSets(ctx context.Context, sessionID string, limit int) ([]*domain.QuestionSet, error) {
	exec := GetExecutor(ctx, a.db)
	if limit <= 0 {
		limit = 20
	}

	query := exec.Rebind(selectSetColumns + ` WHERE session_id = ? ORDER BY created_at DESC ` + limitClause(exec.DriverName(), limit))
	var rows []models.QuestionSet
	if err := exec.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list question sets: %w", err)
	}

	sets := make([]*domain.QuestionSet, 0, len(rows))
	for i := range rows {
		var qs []models.Question
		qquery := exec.Rebind(selectQuestionColumns + ` WHERE set_id = ? ORDER BY position`)
		if err := exec.SelectContext(ctx, &qs, qquery, rows[i].ID); err != nil {
			return nil, fmt.Errorf("failed to load questions of set %s: %w", rows[i].ID, err)
		}
		set, err := toDomainQuestionSet(&rows[i], qs)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// GetLatestQuestionSet returns NOT_FOUND when the session has no saved set.
func (a *QuestionBankAdapter) GetLatestQuestionSet(ctx context.Context, sessionID string) (*domain.QuestionSet, error) {
	sets, err := a.ListQuestionSets(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, domain.NewNotFoundError("No question set saved for this session").WithContext("session_id", sessionID)
	}
	return sets[0], nil
}

func (a *QuestionBankAdapter) SaveExamPaper(ctx context.Context, sessionID string, paper *domain.ExamPaper) error {
	exec := GetExecutor(ctx, a.db)
	body, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("failed to encode exam paper: %w", err)
	}
	created := paper.GeneratedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if _, err := exec.ExecContext(ctx, exec.Rebind(insertExamPaper),
		util.NewULID(), sessionID, paper.Header.ExamTitle, paper.TotalMarks, string(body), created); err != nil {
		return fmt.Errorf("failed to insert exam paper: %w", err)
	}
	return nil
}

func limitClause(driver string, n int) string {
	if driver == "oracle" {
		return fmt.Sprintf("FETCH FIRST %d ROWS ONLY", n)
	}
	return fmt.Sprintf("LIMIT %d", n)
}

func toModelQuestion(setID string, position int, q domain.Question) models.Question {
	id := q.ID
	if id == "" {
		id = util.NewULID()
	}
	return models.Question{
		ID:            id,
		SetID:         setID,
		Position:      position,
		Type:          string(q.Type),
		BloomLevel:    string(q.BloomLevel),
		BloomCode:     q.BloomCode,
		Difficulty:    string(q.Difficulty),
		Content:       q.Content,
		Options:       models.StringSlice(q.Options),
		CorrectAnswer: util.StringToNullString(q.CorrectAnswer),
		Explanation:   util.StringToNullString(q.Explanation),
		Answer:        q.Answer,
		Marks:         q.Marks,
		Source:        string(q.Source),
	}
}

func toDomainQuestionSet(row *models.QuestionSet, qs []models.Question) (*domain.QuestionSet, error) {
	set := &domain.QuestionSet{
		ID:               row.ID,
		SessionID:        row.SessionID,
		GenerationMethod: row.GenerationMethod,
		TotalMarks:       row.TotalMarks,
		CreatedAt:        row.CreatedAt,
		Questions:        make([]domain.Question, 0, len(qs)),
	}
	if row.Requirements != "" {
		if err := json.Unmarshal([]byte(row.Requirements), &set.Requirements); err != nil {
			return nil, fmt.Errorf("failed to decode requirements of set %s: %w", row.ID, err)
		}
	}
	for _, m := range qs {
		set.Questions = append(set.Questions, domain.Question{
			ID:            m.ID,
			Type:          domain.QuestionType(m.Type),
			BloomLevel:    domain.BloomLevel(m.BloomLevel),
			BloomCode:     m.BloomCode,
			Difficulty:    domain.Difficulty(m.Difficulty),
			Content:       m.Content,
			Options:       []string(m.Options),
			CorrectAnswer: m.CorrectAnswer.String,
			Explanation:   m.Explanation.String,
			Answer:        m.Answer,
			Marks:         m.Marks,
			Source:        domain.Origin(m.Source),
		})
	}
	return set, nil
}
