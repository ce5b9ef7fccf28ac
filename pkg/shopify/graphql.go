package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// ThrottleStatus is the leaky-bucket state Shopify reports with every GraphQL response.
type ThrottleStatus struct {
	MaximumAvailable   decimal.Decimal `json:"maximumAvailable"`
	CurrentlyAvailable decimal.Decimal `json:"currentlyAvailable"`
	RestoreRate        decimal.Decimal `json:"restoreRate"`
}

type QueryCost struct {
	RequestedQueryCost decimal.Decimal `json:"requestedQueryCost"`
	ActualQueryCost    decimal.Decimal `json:"actualQueryCost"`
	ThrottleStatus     ThrottleStatus  `json:"throttleStatus"`
}

type GraphQLResponse[T any] struct {
	Data       T              `json:"data"`
	Errors     []GraphQLError `json:"errors"`
	Extensions struct {
		Cost QueryCost `json:"cost"`
	} `json:"extensions"`
}

// Err joins the GraphQL errors, or returns nil when there are none.
func (r *GraphQLResponse[T]) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Extensions.Code != "" {
			msgs = append(msgs, e.Message+" ("+e.Extensions.Code+")")
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return fmt.Errorf("shopify graphql error: %s", strings.Join(msgs, "; "))
}

// Query posts a GraphQL document to the Admin API and decodes data into T.
// A response carrying GraphQL errors is returned together with a non-nil error.
func Query[T any](ctx context.Context, c Client, query string, variables map[string]any) (*GraphQLResponse[T], error) {
	body := map[string]any{"query": query}
	if len(variables) > 0 {
		body["variables"] = variables
	}

	var out GraphQLResponse[T]
	if _, err := c.doJSON(ctx, http.MethodPost, "/graphql.json", body, &out); err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return &out, err
	}
	return &out, nil
}
