package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReceivedEmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	mock.ExpectQuery("SELECT id, subject, sender_id, receiver_id, body, status, created_on FROM messages").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "sender_id", "receiver_id", "body", "status", "created_on"}))

	msgs, err := repo.ListReceived(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
