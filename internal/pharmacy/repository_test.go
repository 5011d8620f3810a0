package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRepoConsume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPendingOrderRepository(db)

	mock.ExpectQuery("DELETE FROM pending_orders").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"medicine_name"}).AddRow("Paracetamol"))

	medicine, err := repo.Consume(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", medicine)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepoConsumeNoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPendingOrderRepository(db)

	mock.ExpectQuery("DELETE FROM pending_orders").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"medicine_name"}))

	_, err = repo.Consume(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestPendingRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPendingOrderRepository(db)

	mock.ExpectExec("INSERT INTO pending_orders").
		WithArgs("user-1", "Ibuprofen").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), "user-1", "Ibuprofen")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepoFindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "price", "package_size", "description", "stock", "prescription_required"}).
		AddRow(1, "Paracetamol", 4.99, "20 tablets", "Pain relief", 50, false)

	mock.ExpectQuery("SELECT id, name, price, package_size, description, stock, prescription_required").
		WithArgs("paracetamol").
		WillReturnRows(rows)

	medicine, err := repo.FindByName(context.Background(), "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", medicine.Name)
	assert.Equal(t, 50, medicine.Stock)
	assert.False(t, medicine.PrescriptionRequired)
}

func TestCatalogRepoFindByNameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogRepository(db)

	mock.ExpectQuery("SELECT id, name, price, package_size, description, stock, prescription_required").
		WithArgs("unicornex").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "package_size", "description", "stock", "prescription_required"}))

	_, err = repo.FindByName(context.Background(), "unicornex")
	assert.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestOrderRepoHasRecentPurchase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "Paracetamol", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	recent, err := repo.HasRecentPurchase(context.Background(), "user-1", "Paracetamol", 72*time.Hour)
	require.NoError(t, err)
	assert.True(t, recent)
}

func TestPrescriptionRepoApproved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPrescriptionRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "Amoxicillin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	approved, err := repo.Approved(context.Background(), "user-1", "Amoxicillin")
	require.NoError(t, err)
	assert.False(t, approved)
}
