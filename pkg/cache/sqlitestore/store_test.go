package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/planetary-social/feedcache/pkg/cache"
	"github.com/stretchr/testify/assert"
)

func TestNewRunsTheMigration(t *testing.T) {
	db, mock := makeDatabase(t)
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := New(db)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveWithoutRowReturnsEmpty(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectQuery("SELECT payload, timestamp FROM cached_feed").WillReturnError(sql.ErrNoRows)

	result := retrieve(t, store)

	assert.NoError(t, result.Err())
	_, found := result.Found()
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveWithWrappedNoRowsErrorReturnsEmpty(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectQuery("SELECT payload, timestamp FROM cached_feed").WillReturnError(errors.Wrap(sql.ErrNoRows, "scanning the row"))

	result := retrieve(t, store)

	assert.NoError(t, result.Err())
	_, found := result.Found()
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveWithScanErrorReturnsFailure(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectQuery("SELECT payload, timestamp FROM cached_feed").WillReturnError(errors.New("disk I/O error"))

	result := retrieve(t, store)

	assert.ErrorContains(t, result.Err(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveWithMalformedPayloadReturnsFailure(t *testing.T) {
	store, mock := makeStore(t)
	rows := sqlmock.NewRows([]string{"payload", "timestamp"}).AddRow([]byte("not json"), int64(0))
	mock.ExpectQuery("SELECT payload, timestamp FROM cached_feed").WillReturnRows(rows)

	result := retrieve(t, store)

	assert.ErrorContains(t, result.Err(), "error decoding the cached feed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetrieveWithRowReturnsTheStoredFeed(t *testing.T) {
	store, mock := makeStore(t)
	images := makeStoredImages(t)
	timestamp := time.Date(2023, time.June, 15, 10, 30, 0, 0, time.UTC)

	payload, err := json.Marshal(images)
	assert.NoError(t, err)
	rows := sqlmock.NewRows([]string{"payload", "timestamp"}).AddRow(payload, timestamp.UnixNano())
	mock.ExpectQuery("SELECT payload, timestamp FROM cached_feed").WillReturnRows(rows)

	result := retrieve(t, store)

	assert.NoError(t, result.Err())
	cached, found := result.Found()
	assert.True(t, found)
	assert.Equal(t, images, cached.Images)
	assert.True(t, timestamp.Equal(cached.Timestamp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReplacesTheRowInOneTransaction(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cached_feed").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cached_feed").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := insert(t, store, makeStoredImages(t), time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailingInsertRollsBack(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cached_feed").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO cached_feed").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := insert(t, store, makeStoredImages(t), time.Now())

	assert.ErrorContains(t, err, "error inserting the new feed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesTheRow(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectExec("DELETE FROM cached_feed").WillReturnResult(sqlmock.NewResult(0, 1))

	err := deleteCache(t, store)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithoutRowIsANoOp(t *testing.T) {
	store, mock := makeStore(t)
	mock.ExpectExec("DELETE FROM cached_feed").WillReturnResult(sqlmock.NewResult(0, 0))

	err := deleteCache(t, store)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func makeDatabase(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func makeStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := makeDatabase(t)
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := New(db)
	assert.NoError(t, err)
	return store, mock
}

func makeStoredImages(t *testing.T) []cache.StoredImage {
	t.Helper()

	description := "a description"

	return []cache.StoredImage{
		{
			ID:          uuid.New(),
			Description: &description,
			URL:         "https://image.example/1.png",
		},
		{
			ID:  uuid.New(),
			URL: "https://image.example/2.png",
		},
	}
}

func retrieve(t *testing.T, store *Store) cache.RetrievalResult {
	t.Helper()

	ch := make(chan cache.RetrievalResult, 1)
	store.Retrieve(func(result cache.RetrievalResult) { ch <- result })
	select {
	case result := <-ch:
		return result
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the store completion")
		return cache.RetrievalResult{}
	}
}

func insert(t *testing.T, store *Store, images []cache.StoredImage, timestamp time.Time) error {
	t.Helper()

	ch := make(chan error, 1)
	store.Insert(images, timestamp, func(err error) { ch <- err })
	return wait(t, ch)
}

func deleteCache(t *testing.T, store *Store) error {
	t.Helper()

	ch := make(chan error, 1)
	store.Delete(func(err error) { ch <- err })
	return wait(t, ch)
}

func wait(t *testing.T, ch chan error) error {
	t.Helper()

	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the store completion")
		return nil
	}
}
