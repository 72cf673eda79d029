package client

import (
	"context"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
)

// GraphQLClient posts queries to a GraphQL endpoint. Every call is bounded by the
// client timeout as well as the caller's context.
type GraphQLClient struct {
	gql *graphql.Client
}

func NewGraphQLClient(url string, timeout time.Duration) *GraphQLClient {
	return &GraphQLClient{
		gql: graphql.NewClient(url, graphql.WithHTTPClient(&http.Client{Timeout: timeout})),
	}
}

// Do executes query and decodes the "data" member into out (when non-nil).
// The first GraphQL error in the response is returned as the call error.
func (c *GraphQLClient) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	req := graphql.NewRequest(query)
	for k, v := range variables {
		req.Var(k, v)
	}
	return c.gql.Run(ctx, req, out)
}
