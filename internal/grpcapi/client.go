package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

// Client calls a remote analyser service
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewClient creates a client for target. Without options the connection is insecure.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}
	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Analyse requests one analysis
func (c *Client) Analyse(ctx context.Context, label string, params overtaking.Params, seed int64) (*service.AnalysisOutcome, error) {
	in, err := toStruct(analyseRequest{Label: label, Seed: seed, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, analyseMethod, in, out); err != nil {
		return nil, err
	}

	var outcome service.AnalysisOutcome
	if err := fromStruct(out, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode outcome: %w", err)
	}
	return &outcome, nil
}

// Check queries the health status of service ("" for the whole server)
func (c *Client) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
