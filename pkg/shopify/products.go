package shopify

import (
	"context"
	"fmt"
	"net/http"
)

const latestProductQuery = `
{
  products(first: 1, reverse: true) {
    edges {
      node {
        id
        title
      }
    }
  }
  currentBulkOperation {
    status
  }
}
`

type latestProductData struct {
	Products struct {
		Edges []struct {
			Node struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
	CurrentBulkOperation *struct {
		Status string `json:"status"`
	} `json:"currentBulkOperation"`
}

// ProductsOverview is what the dashboard needs from one GraphQL round trip.
type ProductsOverview struct {
	LatestProductID    string
	LatestProductTitle string

	// BulkOperationStatus is empty when the shop has no current bulk operation.
	BulkOperationStatus string

	Throttle ThrottleStatus
}

// LatestProduct fetches the most recently created product, the current bulk
// operation status and the API budget left after the query.
func (c Client) LatestProduct(ctx context.Context) (*ProductsOverview, error) {
	resp, err := Query[latestProductData](ctx, c, latestProductQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("latest product query: %w", err)
	}

	out := &ProductsOverview{Throttle: resp.Extensions.Cost.ThrottleStatus}
	if edges := resp.Data.Products.Edges; len(edges) > 0 {
		out.LatestProductID = edges[0].Node.ID
		out.LatestProductTitle = edges[0].Node.Title
	}
	if op := resp.Data.CurrentBulkOperation; op != nil {
		out.BulkOperationStatus = op.Status
	}
	return out, nil
}

// ProductCount calls the REST count endpoint.
func (c Client) ProductCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/products/count.json", nil, &resp); err != nil {
		return 0, fmt.Errorf("product count: %w", err)
	}
	return resp.Count, nil
}
