package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores generated questions, their options, and user answers.
type Repository interface {
	StoreQuestion(ctx context.Context, conversationID string, questionNo int, text string) (int64, error)
	StoreOption(ctx context.Context, questionID int64, label, text, terminology string) error
	StoreAnswer(ctx context.Context, questionID int64, selected string) error
	LatestQuestionID(ctx context.Context, conversationID string) (int64, error)
}

// ErrNoQuestions is returned when a conversation has no stored questions yet.
var ErrNoQuestions = errors.New("diagnosis: no questions stored")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists diagnosis artifacts via pgx.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("diagnosis: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("diagnosis: querier required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) StoreQuestion(ctx context.Context, conversationID string, questionNo int, text string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO questions (conversation_id, question_no, question_text) VALUES ($1, $2, $3) RETURNING id`,
		conversationID, questionNo, text,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("diagnosis: insert question failed: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) StoreOption(ctx context.Context, questionID int64, label, text, terminology string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO options (question_id, option_no, option_text, ehr_terminology) VALUES ($1, $2, $3, $4)`,
		questionID, label, text, terminology,
	)
	if err != nil {
		return fmt.Errorf("diagnosis: insert option failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) StoreAnswer(ctx context.Context, questionID int64, selected string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO answers (question_id, selected_option) VALUES ($1, $2)`,
		questionID, selected,
	)
	if err != nil {
		return fmt.Errorf("diagnosis: insert answer failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LatestQuestionID(ctx context.Context, conversationID string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT id FROM questions WHERE conversation_id = $1 ORDER BY question_no DESC LIMIT 1`,
		conversationID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoQuestions
	}
	if err != nil {
		return 0, fmt.Errorf("diagnosis: latest question lookup failed: %w", err)
	}
	return id, nil
}
