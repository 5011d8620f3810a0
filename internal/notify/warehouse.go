package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WarehouseClient posts fulfillment notifications to the warehouse
// endpoint. Callers treat every failure as non-fatal.
type WarehouseClient struct {
	url        string
	httpClient *http.Client
}

func NewWarehouseClient(url string, timeout time.Duration) *WarehouseClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WarehouseClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type orderPlacedReq struct {
	PatientID string `json:"patient_id"`
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
}

func (c *WarehouseClient) NotifyOrderPlaced(ctx context.Context, patientID, product string, quantity int) error {
	if c.url == "" {
		return nil
	}

	body, err := json.Marshal(orderPlacedReq{
		PatientID: patientID,
		Product:   product,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to notify warehouse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("warehouse returned status: %s, body: %s", resp.Status, string(bodyBytes))
	}
	return nil
}
