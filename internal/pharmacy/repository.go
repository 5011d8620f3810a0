package pharmacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type CatalogRepository interface {
	ListNames(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Medicine, error)
	FindByName(ctx context.Context, name string) (*Medicine, error)
}

type PendingOrderRepository interface {
	// Consume atomically deletes the patient's pending order and returns
	// its medicine name. ErrNoPendingOrder if none exists.
	Consume(ctx context.Context, patientID string) (string, error)
	Upsert(ctx context.Context, patientID, medicineName string) error
}

type OrderRepository interface {
	HasRecentPurchase(ctx context.Context, patientID, medicineName string, window time.Duration) (bool, error)
	ListPatients(ctx context.Context) ([]string, error)
	ListByPatient(ctx context.Context, patientID string) ([]Order, error)
}

type PrescriptionRepository interface {
	// Approved reports whether the prescription upload flow has approved
	// this patient for this medicine.
	Approved(ctx context.Context, patientID, medicineName string) (bool, error)
}

type RefillAlertRepository interface {
	Exists(ctx context.Context, patientID, medicineName string) (bool, error)
	Create(ctx context.Context, alert RefillAlert) error
}

type postgresCatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &postgresCatalogRepo{db: db}
}

func (r *postgresCatalogRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM medicines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list medicine names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *postgresCatalogRepo) List(ctx context.Context) ([]Medicine, error) {
	query := `SELECT id, name, price, package_size, description, stock, prescription_required
		FROM medicines ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var medicines []Medicine
	for rows.Next() {
		var m Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.PackageSize, &m.Description, &m.Stock, &m.PrescriptionRequired); err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

// FindByName matches case-insensitively on substring, first row in name
// order, mirroring the catalog lookup used by stock checks.
func (r *postgresCatalogRepo) FindByName(ctx context.Context, name string) (*Medicine, error) {
	query := `SELECT id, name, price, package_size, description, stock, prescription_required
		FROM medicines WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT 1`

	var m Medicine
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Price, &m.PackageSize, &m.Description, &m.Stock, &m.PrescriptionRequired,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("find medicine: %w", err)
	}
	return &m, nil
}

type postgresPendingRepo struct {
	db *sql.DB
}

func NewPendingOrderRepository(db *sql.DB) PendingOrderRepository {
	return &postgresPendingRepo{db: db}
}

func (r *postgresPendingRepo) Consume(ctx context.Context, patientID string) (string, error) {
	var medicineName string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM pending_orders WHERE patient_id = $1 RETURNING medicine_name`,
		patientID,
	).Scan(&medicineName)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNoPendingOrder
		}
		return "", fmt.Errorf("consume pending order: %w", err)
	}
	return medicineName, nil
}

// Upsert replaces any prior pending order for the patient. patient_id is
// the primary key, so a patient never holds two pending orders.
func (r *postgresPendingRepo) Upsert(ctx context.Context, patientID, medicineName string) error {
	query := `
		INSERT INTO pending_orders (patient_id, medicine_name)
		VALUES ($1, $2)
		ON CONFLICT (patient_id) DO UPDATE SET
			medicine_name = EXCLUDED.medicine_name,
			created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, patientID, medicineName); err != nil {
		return fmt.Errorf("upsert pending order: %w", err)
	}
	return nil
}

type postgresOrderRepo struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepo{db: db}
}

func (r *postgresOrderRepo) HasRecentPurchase(ctx context.Context, patientID, medicineName string, window time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE patient_id = $1
			  AND product_name ILIKE '%' || $2 || '%'
			  AND purchase_date >= $3
		)
	`
	cutoff := time.Now().UTC().Add(-window)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, patientID, medicineName, cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("recent purchase lookup: %w", err)
	}
	return exists, nil
}

func (r *postgresOrderRepo) ListPatients(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT patient_id FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		patients = append(patients, id)
	}
	return patients, rows.Err()
}

func (r *postgresOrderRepo) ListByPatient(ctx context.Context, patientID string) ([]Order, error) {
	query := `SELECT id, patient_id, product_name, quantity, dosage_frequency, purchase_date
		FROM orders WHERE patient_id = $1 ORDER BY purchase_date`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.PatientID, &o.ProductName, &o.Quantity, &o.DosageFrequency, &o.PurchaseDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type postgresPrescriptionRepo struct {
	db *sql.DB
}

func NewPrescriptionRepository(db *sql.DB) PrescriptionRepository {
	return &postgresPrescriptionRepo{db: db}
}

func (r *postgresPrescriptionRepo) Approved(ctx context.Context, patientID, medicineName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM approved_prescriptions
			WHERE patient_id = $1 AND medicine_name ILIKE $2
		)
	`
	var approved bool
	if err := r.db.QueryRowContext(ctx, query, patientID, medicineName).Scan(&approved); err != nil {
		return false, fmt.Errorf("prescription lookup: %w", err)
	}
	return approved, nil
}

type postgresRefillAlertRepo struct {
	db *sql.DB
}

func NewRefillAlertRepository(db *sql.DB) RefillAlertRepository {
	return &postgresRefillAlertRepo{db: db}
}

func (r *postgresRefillAlertRepo) Exists(ctx context.Context, patientID, medicineName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refill_alerts
			WHERE patient_id = $1 AND medicine_name = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, patientID, medicineName).Scan(&exists); err != nil {
		return false, fmt.Errorf("refill alert lookup: %w", err)
	}
	return exists, nil
}

func (r *postgresRefillAlertRepo) Create(ctx context.Context, alert RefillAlert) error {
	query := `
		INSERT INTO refill_alerts (patient_id, medicine_name, expected_run_out)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, medicine_name) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, alert.PatientID, alert.MedicineName, alert.ExpectedRunOut); err != nil {
		return fmt.Errorf("create refill alert: %w", err)
	}
	return nil
}
