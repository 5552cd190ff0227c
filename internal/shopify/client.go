// Package shopify queries the Admin GraphQL API for live product data.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Product is the subset of product attributes the enrichment pipeline needs.
type Product struct {
	Title  string
	Images []Image
}

// Image is a single product image node.
type Image struct {
	URL     string
	AltText string
}

// ProductFetcher is the remote product query capability. A nil Product with
// a nil error means the product no longer exists (deleted). Transport and
// decode failures are returned as errors and must never be mistaken for
// deletion.
type ProductFetcher interface {
	Product(ctx context.Context, id string) (*Product, error)
}

// productQuery fetches the title and first image of a product by GID.
const productQuery = `query product($id: ID!) {
  product(id: $id) {
    title
    images(first: 1) {
      nodes {
        altText
        url
      }
    }
  }
}`

// Client is a ProductFetcher backed by the Admin GraphQL API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// ClientConfig holds configuration for the Client.
type ClientConfig struct {
	Endpoint    string // Admin GraphQL endpoint, e.g. https://shop/admin/api/2024-01/graphql.json
	AccessToken string
	Timeout     time.Duration // defaults to 10s
	HTTPClient  *http.Client  // optional; overrides Timeout when set
}

// NewClient creates a new Admin API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type productResponse struct {
	Data struct {
		Product *struct {
			Title  string `json:"title"`
			Images struct {
				Nodes []struct {
					AltText string `json:"altText"`
					URL     string `json:"url"`
				} `json:"nodes"`
			} `json:"images"`
		} `json:"product"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// Product fetches a product by its GID. Returns (nil, nil) when the API
// reports no product for the id.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     productQuery,
		Variables: map[string]any{"id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal product query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product query for %s: %w", id, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product query for %s: unexpected status %d", id, resp.StatusCode)
	}

	var decoded productResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode product response for %s: %w", id, err)
	}

	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("product query for %s: %s", id, decoded.Errors[0].Message)
	}

	if decoded.Data.Product == nil {
		return nil, nil
	}

	product := &Product{Title: decoded.Data.Product.Title}
	for _, node := range decoded.Data.Product.Images.Nodes {
		product.Images = append(product.Images, Image{
			URL:     node.URL,
			AltText: node.AltText,
		})
	}
	return product, nil
}
