package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebethel/portal-api/internal/models"
)

func TestMessageRepositoryInsertTrimsToCap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM messages WHERE id NOT IN (SELECT id FROM messages ORDER BY sent_at DESC LIMIT $1)")).
		WithArgs(200).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	msg := &models.Message{AuthorID: "u1", AuthorName: "Ms Adeyemi", AuthorRole: models.RoleTeacher, Body: "Sports day moved."}
	require.NoError(t, repo.Insert(context.Background(), msg, 200))
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.SentAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryListLatestAscending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, author_id, author_name, author_role, body, sent_at FROM").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "author_name", "author_role", "body", "sent_at"}).
			AddRow("m2", "u1", "Ms Adeyemi", "TEACHER", "second", now.Add(-time.Minute)).
			AddRow("m3", "u1", "Ms Adeyemi", "TEACHER", "third", now))

	messages, err := repo.ListLatest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Body)
	assert.Equal(t, "third", messages[1].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}
