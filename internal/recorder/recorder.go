package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// fallbackOrderID is used when the backend response carries no order id.
const fallbackOrderID = 1

// Recorder posts a finalized sale to the order-recording backend: one header
// via POST /ventas, then one line per item via POST /detalles, strictly in
// cart insertion order. The first failure aborts; anything already posted
// stays upstream (no rollback in the backend protocol).
type Recorder struct {
	base   string
	http   *http.Client
	log    *zap.Logger
	nit    string
	userID int64
}

func New(baseURL string, timeout time.Duration, nit string, userID int64, log *zap.Logger) *Recorder {
	return &Recorder{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		log:    log,
		nit:    nit,
		userID: userID,
	}
}

// headerResponse is whatever the backend answers to POST /ventas. Older
// backends return only a status string; venta_id is decoded when present.
type headerResponse struct {
	OrderID int64 `json:"venta_id"`
}

// Record persists the snapshot. Returns the order id the lines were joined
// against. Failures are reported verbatim and never retried here.
func (r *Recorder) Record(ctx context.Context, snapshot domain.CartSnapshot) (int64, error) {
	if len(snapshot.Items) == 0 {
		return 0, domain.ErrEmptyCart
	}

	header := domain.Order{
		Total:  domain.Round2(snapshot.Total),
		NIT:    r.nit,
		UserID: r.userID,
	}
	body, err := r.post(ctx, "/ventas", header)
	if err != nil {
		return 0, fmt.Errorf("record order header: %w", err)
	}

	orderID := int64(fallbackOrderID)
	var hr headerResponse
	if jsonErr := json.Unmarshal(body, &hr); jsonErr == nil && hr.OrderID > 0 {
		orderID = hr.OrderID
	}

	for i, item := range snapshot.Items {
		line := domain.OrderLine{
			OrderID:   orderID,
			ProductID: item.Product.ID,
			Quantity:  item.EffectiveQuantity(),
			UnitPrice: domain.Round2(item.Product.Price),
		}
		if _, err := r.post(ctx, "/detalles", line); err != nil {
			// The header and lines before this one are already upstream.
			return orderID, fmt.Errorf("record line %d (product_id=%d): %w",
				i+1, item.Product.ID, err)
		}
	}

	r.log.Info("sale recorded",
		zap.Int64("order_id", orderID),
		zap.Int("lines", len(snapshot.Items)),
		zap.Float64("total", header.Total))
	return orderID, nil
}

func (r *Recorder) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrConnection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
