package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"psmc/fsm"
)

// Client of the psmc.Checker service
type Client struct {
	conn *grpc.ClientConn
}

// Connect to the service at addr. Connections are insecure unless dialOpts say otherwise.
func Dial(addr string, dialOpts ...grpc.DialOption) (*Client, error) {
	dialOpts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, dialOpts...)
	conn, err := grpc.Dial(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Check the ltlspec of model on the server
func (c *Client) Check(ctx context.Context, model *fsm.Model, opts Options) (Result, error) {
	req, err := newRequest(model, opts)
	if err != nil {
		return Result{}, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, checkMethod, req, out); err != nil {
		return Result{}, err
	}
	return parseResponse(out), nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Invoke(ctx, pingMethod, &emptypb.Empty{}, new(emptypb.Empty))
}

func (c *Client) Version(ctx context.Context) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, versionMethod, &emptypb.Empty{}, out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
