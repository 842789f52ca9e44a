package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// Client fetches product records from the catalog backend.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger

	productCB *gobreaker.CircuitBreaker[domain.Product]
	listCB    *gobreaker.CircuitBreaker[[]domain.Product]
	sfg       singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	// A missing product is a normal answer, not a backend fault; it must
	// not trip the breaker.
	isSuccessful := func(err error) bool {
		return err == nil || errors.Is(err, domain.ErrNotFound)
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
		productCB: gobreaker.NewCircuitBreaker[domain.Product](gobreaker.Settings{
			Name:         "catalog-product",
			IsSuccessful: isSuccessful,
		}),
		listCB: gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
			Name:         "catalog-list",
			IsSuccessful: isSuccessful,
		}),
	}
}

// Product fetches one product by id. Concurrent requests for the same id
// (a double-scan) collapse into a single backend call.
func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, fmt.Errorf("%w: product id must be positive", domain.ErrInvalidInput)
	}

	v, err, _ := c.sfg.Do(fmt.Sprintf("product:%d", id), func() (interface{}, error) {
		return c.productCB.Execute(func() (domain.Product, error) {
			return c.fetchProduct(ctx, id)
		})
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	return c.listCB.Execute(func() ([]domain.Product, error) {
		return c.fetchProducts(ctx)
	})
}

func (c *Client) fetchProduct(ctx context.Context, id int64) (domain.Product, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/productos/%d", c.base, id))
	if err != nil {
		return domain.Product{}, err
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product: %w", err)
	}
	p.Normalize()
	return p, nil
}

func (c *Client) fetchProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, c.base+"/productos")
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Warn("catalog request failed",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
