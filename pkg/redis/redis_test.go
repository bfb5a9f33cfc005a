package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient() (*Client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &Client{Client: db}, mock
}

func TestSetWithExpiration(t *testing.T) {
	client, mock := newMockClient()

	mock.ExpectSet("key", "value", time.Minute).SetVal("OK")

	err := client.SetWithExpiration(context.Background(), "key", "value", time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetString(t *testing.T) {
	client, mock := newMockClient()

	mock.ExpectGet("key").SetVal("value")

	got, err := client.GetString(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestGetStringMissingKey(t *testing.T) {
	client, mock := newMockClient()

	mock.ExpectGet("missing").RedisNil()

	_, err := client.GetString(context.Background(), "missing")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	client, mock := newMockClient()

	mock.ExpectDel("a", "b").SetVal(2)

	err := client.Delete(context.Background(), "a", "b")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
