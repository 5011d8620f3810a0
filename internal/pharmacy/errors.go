package pharmacy

import "errors"

var (
	// ErrMedicineNotFound means the catalog has no row matching the name.
	ErrMedicineNotFound = errors.New("pharmacy: medicine not found")

	// ErrInsufficientStock means the conditional decrement matched no row,
	// i.e. stock < requested quantity at commit time.
	ErrInsufficientStock = errors.New("pharmacy: insufficient stock")

	// ErrNoPendingOrder means the patient has no pending order to consume.
	ErrNoPendingOrder = errors.New("pharmacy: no pending order")

	// ErrDuplicateRecentOrder means the same patient ordered the same
	// medicine inside the recency window.
	ErrDuplicateRecentOrder = errors.New("pharmacy: duplicate recent order")
)
