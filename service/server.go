package service

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"psmc"
	"psmc/fsm"
	"psmc/ltl"
)

// Server checks the models it receives, one at a time.
type Server struct {
	srv *grpc.Server

	// Options applied before the options of every request
	base    []psmc.CheckerOption
	verbose bool

	// rudd shares a counter between diagrams when building renamers, so checks do not overlap
	mu sync.Mutex
}

func NewServer(verbose bool, base []psmc.CheckerOption, srvOpts ...grpc.ServerOption) *Server {
	s := &Server{
		base:    base,
		verbose: verbose,
	}
	srvOpts = append(srvOpts, grpc.UnaryInterceptor(s.logInterceptor))
	s.srv = grpc.NewServer(srvOpts...)
	RegisterCheckerServer(s.srv, s)
	return s
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

func (s *Server) Stop() {
	s.srv.Stop()
}

func (s *Server) logInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.verbose {
		log.Printf("service: %v done in %v, err: %v\n", info.FullMethod, time.Since(start), err)
	}
	return resp, err
}

func (s *Server) Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	model, opts, err := parseRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	checkerOpts, err := opts.CheckerOptions()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if s.verbose {
		checkerOpts = append(checkerOpts, psmc.Verbose())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	resp, err := psmc.PrepareChecker(append(append([]psmc.CheckerOption{}, s.base...), checkerOpts...)...).Run(ctx, model)
	if err != nil {
		return nil, status.Error(errorCode(err), err.Error())
	}
	return newResponse(resp)
}

func errorCode(err error) codes.Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, ltl.ErrTranslator):
		return codes.FailedPrecondition
	case errors.Is(err, fsm.ErrModel), errors.Is(err, psmc.ErrEmptySpec):
		return codes.InvalidArgument
	}
	return codes.Unknown
}

func (s *Server) Ping(context.Context, *empty.Empty) (*empty.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *Server) Version(context.Context, *empty.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(Version), nil
}
