// Package grpcapi serves overtaking analyses over gRPC alongside the standard health service.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName   = "overtake.v1.Analyser"
	analyseMethod = "/" + ServiceName + "/Analyse"
)

// Analyser is the service behind the gRPC endpoint
type Analyser interface {
	Analyse(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisOutcome, error)
	CheckRequestSize(params overtaking.Params, steps int) error
}

// AnalyserServer is the server API for the overtake.v1.Analyser service
type AnalyserServer interface {
	Analyse(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var analyserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyserServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Analyse",
			Handler:    analyseHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "overtake/v1/analyser.proto",
}

func analyseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyserServer).Analyse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: analyseMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyserServer).Analyse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// analyseRequest is the JSON shape carried inside the request Struct
type analyseRequest struct {
	Label  string            `json:"label"`
	Seed   int64             `json:"seed"`
	Params overtaking.Params `json:"params"`
}

// Server hosts the analyser and health services
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	analyser   Analyser
	logger     *logrus.Logger
}

// NewServer creates a new gRPC server
func NewServer(analyser Analyser, log *logrus.Logger, opts ...grpc.ServerOption) *Server {
	s := &Server{
		health:   health.NewServer(),
		analyser: analyser,
		logger:   log,
	}

	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	s.grpcServer = grpc.NewServer(opts...)
	s.grpcServer.RegisterService(&analyserServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Analyse implements AnalyserServer
func (s *Server) Analyse(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req analyseRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := s.analyser.CheckRequestSize(req.Params, 0); err != nil {
		return nil, toStatus(err)
	}

	outcome, err := s.analyser.Analyse(ctx, service.AnalysisRequest{
		Label:  req.Label,
		Params: req.Params,
		Seed:   req.Seed,
		Mode:   models.ModeAnalyse,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := toStruct(outcome)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode outcome: %v", err)
	}
	return out, nil
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// ListenAndServe serves on port until ctx is cancelled, then stops gracefully
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", port).Info("gRPC server starting")
		errCh <- s.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.Stop()
		return nil
	}
}

// Stop marks the services as not serving and drains in-flight calls
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func (s *Server) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := s.logger.WithFields(logrus.Fields{
		"method":      info.FullMethod,
		"code":        status.Code(err).String(),
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
	})
	if err != nil {
		entry.WithError(err).Warn("gRPC call failed")
	} else {
		entry.Debug("gRPC call completed")
	}
	return resp, err
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, overtaking.ErrInvalidConfiguration),
		errors.Is(err, service.ErrRequestTooLarge):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func fromStruct(in *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
