// Package grpcapi implements the Calculator gRPC service. Messages are
// protobuf well-known types, so clients need no generated stubs.
package grpcapi

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/rpncalc/pkg/calc"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// Full method names of the Calculator service.
const (
	ServiceName           = "rpncalc.v1.Calculator"
	MethodEvaluate        = "/" + ServiceName + "/Evaluate"
	MethodTokenize        = "/" + ServiceName + "/Tokenize"
	MethodListEvaluations = "/" + ServiceName + "/ListEvaluations"
)

// errorDomain identifies calculator errors in google.rpc.ErrorInfo details.
const errorDomain = "rpncalc.lemonberrylabs.github.com"

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Tokenize(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	ListEvaluations(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// Server implements the Calculator gRPC service.
type Server struct {
	store     *store.Store
	precision int
	grpc      *grpc.Server
}

// New creates a new gRPC server wrapping the given store.
func New(s *store.Store, precision int) *Server {
	srv := &Server{
		store:     s,
		precision: precision,
	}

	gs := grpc.NewServer()
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// Evaluate evaluates an expression and records it in the history.
func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ev, err := s.store.Evaluate(req.GetValue(), "grpc")
	if err != nil {
		return nil, calcErrorToStatus(err)
	}
	return evaluationToProto(ev, s.precision)
}

// Tokenize validates an expression and returns its postfix tokens without
// evaluating or recording it.
func (s *Server) Tokenize(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	tokens, err := calc.Tokenize(calc.Clean(req.GetValue()))
	if err != nil {
		return nil, calcErrorToStatus(err)
	}
	postfix, err := calc.ToPostfix(tokens)
	if err != nil {
		return nil, calcErrorToStatus(err)
	}

	values := make([]interface{}, len(postfix))
	for i, tok := range postfix {
		values[i] = tok.Value
	}
	return structpb.NewList(values)
}

// ListEvaluations returns the evaluation history, newest first.
func (s *Server) ListEvaluations(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	evaluations := s.store.ListEvaluations()

	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(evaluations))}
	for _, ev := range evaluations {
		pb, err := evaluationToProto(ev, s.precision)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		list.Values = append(list.Values, structpb.NewStructValue(pb))
	}
	return list, nil
}

// --- Helpers ---

func evaluationToProto(ev *store.Evaluation, precision int) (*structpb.Struct, error) {
	m := map[string]interface{}{
		"id":         ev.ID,
		"expression": ev.Expression,
		"state":      string(ev.State),
		"source":     ev.Source,
		"createTime": ev.CreateTime.Format(time.RFC3339),
	}
	if ev.Postfix != "" {
		m["postfix"] = ev.Postfix
	}
	if ev.State == store.EvaluationSucceeded {
		m["formatted"] = calc.FormatValue(ev.Result, precision)
		if !math.IsInf(ev.Result, 0) && !math.IsNaN(ev.Result) {
			m["result"] = ev.Result
		}
	}
	if ev.Error != nil {
		m["error"] = ev.Error.Message
	}
	return structpb.NewStruct(m)
}

// calcErrorToStatus maps calculator errors onto gRPC status codes, attaching
// the error kind and position as google.rpc.ErrorInfo.
func calcErrorToStatus(err error) error {
	ce, ok := types.AsCalcError(err)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}

	code := codes.InvalidArgument
	if ce.HasKind(types.KindStructuralError) {
		code = codes.FailedPrecondition
	}

	info := &errdetails.ErrorInfo{
		Reason:   string(ce.Kind),
		Domain:   errorDomain,
		Metadata: map[string]string{},
	}
	if ce.Pos != types.NoPos {
		info.Metadata["position"] = strconv.Itoa(ce.Pos)
	}

	st, detailErr := status.New(code, ce.Message).WithDetails(info)
	if detailErr != nil {
		return status.Error(code, ce.Message)
	}
	return st.Err()
}
