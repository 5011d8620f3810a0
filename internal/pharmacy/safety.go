package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SafetyGate evaluates ordering policy for a patient/medicine pair:
// prescription requirements and the duplicate recent-purchase guard.
// Read-only; the committer re-checks recency inside its transaction.
type SafetyGate struct {
	catalog       CatalogRepository
	orders        OrderRepository
	prescriptions PrescriptionRepository
	window        time.Duration
}

func NewSafetyGate(catalog CatalogRepository, orders OrderRepository, prescriptions PrescriptionRepository, window time.Duration) *SafetyGate {
	if window <= 0 {
		window = 72 * time.Hour
	}
	return &SafetyGate{
		catalog:       catalog,
		orders:        orders,
		prescriptions: prescriptions,
		window:        window,
	}
}

func (g *SafetyGate) Check(ctx context.Context, patientID, medicineName string) (SafetyCheck, error) {
	medicine, err := g.catalog.FindByName(ctx, medicineName)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return SafetyCheck{
				Status:  SafetyBlocked,
				Message: "Medicine not found. Please check spelling.",
			}, nil
		}
		return SafetyCheck{}, err
	}

	if medicine.PrescriptionRequired {
		approved, err := g.prescriptions.Approved(ctx, patientID, medicine.Name)
		if err != nil {
			return SafetyCheck{}, err
		}
		if !approved {
			return SafetyCheck{
				Status:  SafetyBlocked,
				Message: fmt.Sprintf("%s requires a prescription. Please upload one before ordering.", medicine.Name),
			}, nil
		}
	}

	recent, err := g.orders.HasRecentPurchase(ctx, patientID, medicine.Name, g.window)
	if err != nil {
		return SafetyCheck{}, err
	}
	if recent {
		return SafetyCheck{
			Status: SafetyBlocked,
			Message: fmt.Sprintf("You already bought %s in the last %d days. Please wait before reordering.",
				medicine.Name, int(g.window.Hours()/24)),
		}, nil
	}

	return SafetyCheck{Status: SafetyOK}, nil
}
