package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRefillOrders struct {
	orders map[string][]Order
}

func (o *memRefillOrders) HasRecentPurchase(ctx context.Context, patientID, medicineName string, window time.Duration) (bool, error) {
	return false, nil
}

func (o *memRefillOrders) ListPatients(ctx context.Context) ([]string, error) {
	var patients []string
	for p := range o.orders {
		patients = append(patients, p)
	}
	return patients, nil
}

func (o *memRefillOrders) ListByPatient(ctx context.Context, patientID string) ([]Order, error) {
	return o.orders[patientID], nil
}

type memAlerts struct {
	alerts map[string]RefillAlert
}

func newMemAlerts() *memAlerts {
	return &memAlerts{alerts: make(map[string]RefillAlert)}
}

func (a *memAlerts) Exists(ctx context.Context, patientID, medicineName string) (bool, error) {
	_, ok := a.alerts[patientID+"/"+medicineName]
	return ok, nil
}

func (a *memAlerts) Create(ctx context.Context, alert RefillAlert) error {
	a.alerts[alert.PatientID+"/"+alert.MedicineName] = alert
	return nil
}

func TestRefillScannerGeneratesAlert(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// 14 units at twice daily = 7 days of supply, bought 6 days ago:
	// runs out tomorrow, inside the 48h lead time.
	orders := &memRefillOrders{orders: map[string][]Order{
		"user-1": {{
			ID:              uuid.New(),
			PatientID:       "user-1",
			ProductName:     "Paracetamol",
			Quantity:        14,
			DosageFrequency: 2,
			PurchaseDate:    now.Add(-6 * 24 * time.Hour),
		}},
	}}
	alerts := newMemAlerts()

	scanner := NewRefillScanner(orders, alerts, 48*time.Hour, nil)
	scanner.now = func() time.Time { return now }

	generated, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, generated, 1)
	assert.Equal(t, "user-1", generated[0].PatientID)
	assert.Equal(t, "Paracetamol", generated[0].MedicineName)
}

func TestRefillScannerSkipsFreshSupply(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// 60 units at once daily bought yesterday: nowhere near running out.
	orders := &memRefillOrders{orders: map[string][]Order{
		"user-1": {{
			ID:              uuid.New(),
			PatientID:       "user-1",
			ProductName:     "Vitamin B12",
			Quantity:        60,
			DosageFrequency: 1,
			PurchaseDate:    now.Add(-24 * time.Hour),
		}},
	}}
	alerts := newMemAlerts()

	scanner := NewRefillScanner(orders, alerts, 48*time.Hour, nil)
	scanner.now = func() time.Time { return now }

	generated, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, generated)
}

func TestRefillScannerSkipsExistingAlert(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	orders := &memRefillOrders{orders: map[string][]Order{
		"user-1": {{
			ID:              uuid.New(),
			PatientID:       "user-1",
			ProductName:     "Paracetamol",
			Quantity:        2,
			DosageFrequency: 1,
			PurchaseDate:    now.Add(-5 * 24 * time.Hour),
		}},
	}}
	alerts := newMemAlerts()
	require.NoError(t, alerts.Create(context.Background(), RefillAlert{
		PatientID:    "user-1",
		MedicineName: "Paracetamol",
	}))

	scanner := NewRefillScanner(orders, alerts, 48*time.Hour, nil)
	scanner.now = func() time.Time { return now }

	generated, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, generated)
}

func TestRefillScannerIgnoresZeroDosage(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	orders := &memRefillOrders{orders: map[string][]Order{
		"user-1": {{
			ID:           uuid.New(),
			PatientID:    "user-1",
			ProductName:  "Paracetamol",
			Quantity:     10,
			PurchaseDate: now.Add(-30 * 24 * time.Hour),
		}},
	}}
	alerts := newMemAlerts()

	scanner := NewRefillScanner(orders, alerts, 48*time.Hour, nil)
	scanner.now = func() time.Time { return now }

	generated, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, generated)
}
