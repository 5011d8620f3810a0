package pharmacy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) NotifyOrderPlaced(ctx context.Context, patientID, product string, quantity int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, product)
	return n.err
}

func expectCommitterTx(mock sqlmock.Sqlmock, product string, recent bool) {
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM medicines").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(product))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(recent))
}

func TestCommitterPlaceSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCommitterTx(mock, "Paracetamol", false)
	mock.ExpectExec("UPDATE medicines SET stock").
		WithArgs("Paracetamol", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	committer := NewCommitter(db, nil, 72*time.Hour, nil)

	receipt, err := committer.Place(context.Background(), "user-1", "paracetamol", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "order_placed", receipt.Status)
	assert.Equal(t, "Paracetamol", receipt.Product)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitterPlaceInsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCommitterTx(mock, "Paracetamol", false)
	// Conditional decrement matches no row when stock < quantity.
	mock.ExpectExec("UPDATE medicines SET stock").
		WithArgs("Paracetamol", 100).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	committer := NewCommitter(db, nil, 72*time.Hour, nil)

	_, err = committer.Place(context.Background(), "user-1", "paracetamol", 100, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitterPlaceDuplicateRecentOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCommitterTx(mock, "Paracetamol", true)
	mock.ExpectRollback()

	committer := NewCommitter(db, nil, 72*time.Hour, nil)

	_, err = committer.Place(context.Background(), "user-1", "paracetamol", 2, 1)
	assert.ErrorIs(t, err, ErrDuplicateRecentOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitterPlaceUnknownMedicine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM medicines").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectRollback()

	committer := NewCommitter(db, nil, 72*time.Hour, nil)

	_, err = committer.Place(context.Background(), "user-1", "unicornex", 1, 1)
	assert.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestCommitterPlaceRejectsNonPositiveQuantity(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	committer := NewCommitter(db, nil, 72*time.Hour, nil)

	_, err = committer.Place(context.Background(), "user-1", "paracetamol", 0, 1)
	assert.Error(t, err)
}

func TestCommitterNotifiesWarehouse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCommitterTx(mock, "Paracetamol", false)
	mock.ExpectExec("UPDATE medicines SET stock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	notifier := &recordingNotifier{}
	committer := NewCommitter(db, notifier, 72*time.Hour, nil)

	_, err = committer.Place(context.Background(), "user-1", "paracetamol", 2, 1)
	require.NoError(t, err)

	// Notification runs on its own goroutine.
	assert.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.calls) == 1
	}, time.Second, 10*time.Millisecond)
}
