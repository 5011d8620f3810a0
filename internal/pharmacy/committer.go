package pharmacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pharmacy-ai-agent/pkg/logging"
)

// WarehouseNotifier receives a best-effort fulfillment notification once an
// order is committed. Implementations must never block order placement.
type WarehouseNotifier interface {
	NotifyOrderPlaced(ctx context.Context, patientID, product string, quantity int) error
}

// Committer performs the stock decrement and the order insert as one
// transaction. The decrement is a conditional UPDATE guarded by
// stock >= quantity, so stock can never go negative even when the
// InventoryGate's earlier read is stale.
type Committer struct {
	db       *sql.DB
	notifier WarehouseNotifier
	window   time.Duration
	logger   *logging.Logger
}

func NewCommitter(db *sql.DB, notifier WarehouseNotifier, window time.Duration, logger *logging.Logger) *Committer {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = 72 * time.Hour
	}
	return &Committer{db: db, notifier: notifier, window: window, logger: logger}
}

func (c *Committer) Place(ctx context.Context, patientID, medicineName string, quantity int, dosageFrequency float64) (*OrderReceipt, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("committer: quantity must be positive, got %d", quantity)
	}
	if dosageFrequency <= 0 {
		dosageFrequency = 1
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	// Serialize commits per patient so two near-simultaneous orders cannot
	// both slip past the recency guard.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, patientID); err != nil {
		return nil, fmt.Errorf("acquire patient lock: %w", err)
	}

	var productName string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM medicines WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT 1`,
		medicineName,
	).Scan(&productName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("resolve product for order: %w", err)
	}

	var duplicate bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE patient_id = $1 AND product_name = $2 AND purchase_date >= $3
		)`,
		patientID, productName, time.Now().UTC().Add(-c.window),
	).Scan(&duplicate)
	if err != nil {
		return nil, fmt.Errorf("recency re-check: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateRecentOrder
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE medicines SET stock = stock - $2 WHERE name = $1 AND stock >= $2`,
		productName, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decrement stock result: %w", err)
	}
	if affected == 0 {
		return nil, ErrInsufficientStock
	}

	order := Order{
		ID:              uuid.New(),
		PatientID:       patientID,
		ProductName:     productName,
		Quantity:        quantity,
		DosageFrequency: dosageFrequency,
		PurchaseDate:    time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, patient_id, product_name, quantity, dosage_frequency, purchase_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.PatientID, order.ProductName, order.Quantity, order.DosageFrequency, order.PurchaseDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	if c.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.notifier.NotifyOrderPlaced(ctx, patientID, productName, quantity); err != nil {
				c.logger.Warn("warehouse notification failed",
					"patient_id", patientID, "product", productName, "error", err)
			}
		}()
	}

	return &OrderReceipt{Status: "order_placed", Product: productName}, nil
}
