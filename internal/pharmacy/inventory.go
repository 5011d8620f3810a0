package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// InventoryGate answers whether a medicine can cover a requested quantity.
// Read-only; the authoritative decrement happens in the Committer.
type InventoryGate struct {
	catalog CatalogRepository
}

func NewInventoryGate(catalog CatalogRepository) *InventoryGate {
	return &InventoryGate{catalog: catalog}
}

func (g *InventoryGate) Check(ctx context.Context, medicineName string, quantity int) (StockCheck, error) {
	if quantity <= 0 {
		return StockCheck{}, fmt.Errorf("inventory: quantity must be positive, got %d", quantity)
	}

	medicine, err := g.catalog.FindByName(ctx, strings.TrimSpace(medicineName))
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return StockCheck{Status: StockNotFound}, nil
		}
		return StockCheck{}, err
	}

	if medicine.Stock < quantity {
		return StockCheck{Status: StockInsufficient, Available: medicine.Stock}, nil
	}

	return StockCheck{Status: StockAvailable, MatchedProduct: medicine.Name}, nil
}
