package diagnosis

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreQuestionAndOptions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery(`INSERT INTO questions`).
		WithArgs("conv-1", 1, "How long?").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.StoreQuestion(context.Background(), "conv-1", 1, "How long?")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	mock.ExpectExec(`INSERT INTO options`).
		WithArgs(int64(11), "A", "Less than a day", "Acute onset").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.StoreOption(context.Background(), 11, "A", "Less than a day", "Acute onset"))

	mock.ExpectExec(`INSERT INTO answers`).
		WithArgs(int64(11), "B").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.StoreAnswer(context.Background(), 11, "B"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestQuestionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs("conv-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))

	id, err := repo.LatestQuestionID(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestLatestQuestionIDEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs("conv-2").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = repo.LatestQuestionID(context.Background(), "conv-2")
	assert.ErrorIs(t, err, ErrNoQuestions)
}
