package pharmacy

import (
	"context"
	"time"

	"pharmacy-ai-agent/pkg/logging"
)

// RefillScanner walks order history and records an alert for every order
// whose supply runs out within the lead time. Supply is estimated as
// quantity / dosage_frequency days.
type RefillScanner struct {
	orders   OrderRepository
	alerts   RefillAlertRepository
	leadTime time.Duration
	logger   *logging.Logger

	now func() time.Time
}

func NewRefillScanner(orders OrderRepository, alerts RefillAlertRepository, leadTime time.Duration, logger *logging.Logger) *RefillScanner {
	if logger == nil {
		logger = logging.Default()
	}
	if leadTime <= 0 {
		leadTime = 48 * time.Hour
	}
	return &RefillScanner{
		orders:   orders,
		alerts:   alerts,
		leadTime: leadTime,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RefillScanner) Scan(ctx context.Context) ([]RefillAlert, error) {
	patients, err := s.orders.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	var generated []RefillAlert
	for _, patient := range patients {
		orders, err := s.orders.ListByPatient(ctx, patient)
		if err != nil {
			return generated, err
		}

		for _, order := range orders {
			if order.DosageFrequency <= 0 {
				continue
			}

			daysSupply := float64(order.Quantity) / order.DosageFrequency
			runOut := order.PurchaseDate.Add(time.Duration(daysSupply * 24 * float64(time.Hour)))

			if s.now().Before(runOut.Add(-s.leadTime)) {
				continue
			}

			exists, err := s.alerts.Exists(ctx, patient, order.ProductName)
			if err != nil {
				return generated, err
			}
			if exists {
				continue
			}

			alert := RefillAlert{
				PatientID:      patient,
				MedicineName:   order.ProductName,
				ExpectedRunOut: runOut,
			}
			if err := s.alerts.Create(ctx, alert); err != nil {
				return generated, err
			}

			s.logger.Info("refill alert generated",
				"patient_id", patient, "medicine", order.ProductName, "run_out", runOut)
			generated = append(generated, alert)
		}
	}

	return generated, nil
}
