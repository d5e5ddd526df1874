package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"psmc"
	"psmc/checking"
	"psmc/fsm"
)

var ErrRequest = errors.New("service: invalid request")

// Options of a remote check, mirroring the checker options that make sense over the wire
type Options struct {
	Parallel       bool   `json:"parallel,omitempty"`
	Strategy       string `json:"strategy,omitempty"`
	ForwardSlices  []int  `json:"forward_slices,omitempty"`
	BackwardSlices []int  `json:"backward_slices,omitempty"`
	NumExecutors   int    `json:"num_executors,omitempty"`
	TransMethod    string `json:"trans_method,omitempty"`
	Safety         bool   `json:"safety,omitempty"`
	ExtendTrans    []int  `json:"extend_trans,omitempty"`
}

// The checker options of o
func (o Options) CheckerOptions() ([]psmc.CheckerOption, error) {
	opts := []psmc.CheckerOption{psmc.Parallel(o.Parallel)}
	if o.Strategy != "" {
		opts = append(opts, psmc.WithStrategy(o.Strategy))
	}
	if len(o.ForwardSlices) > 0 {
		opts = append(opts, psmc.ForwardSlices(o.ForwardSlices...))
	}
	if len(o.BackwardSlices) > 0 {
		opts = append(opts, psmc.BackwardSlices(o.BackwardSlices...))
	}
	if o.NumExecutors > 0 {
		opts = append(opts, psmc.NumExecutors(o.NumExecutors))
	}
	if o.TransMethod != "" {
		method, err := fsm.ParseTransMethod(o.TransMethod)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequest, err)
		}
		opts = append(opts, psmc.TransMethod(method))
	}
	if o.Safety {
		opts = append(opts, psmc.Safety())
	}
	if len(o.ExtendTrans) > 0 {
		opts = append(opts, psmc.ExtendTrans(o.ExtendTrans...))
	}
	return opts, nil
}

// Result of a remote check
type Result struct {
	Holds     bool
	Elapsed   time.Duration
	Message   string
	Violating []int
}

// Convert v to a Struct through its JSON encoding
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

// Decode s into v through its JSON encoding
func fromStruct(s *structpb.Struct, v interface{}) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func newRequest(model *fsm.Model, opts Options) (*structpb.Struct, error) {
	m, err := toStruct(model)
	if err != nil {
		return nil, err
	}
	o, err := toStruct(opts)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"model":   structpb.NewStructValue(m),
		"options": structpb.NewStructValue(o),
	}}, nil
}

func parseRequest(req *structpb.Struct) (*fsm.Model, Options, error) {
	var opts Options
	m := req.GetFields()["model"].GetStructValue()
	if m == nil {
		return nil, opts, fmt.Errorf("%w: missing model", ErrRequest)
	}
	raw, err := json.Marshal(m.AsMap())
	if err != nil {
		return nil, opts, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	model, err := fsm.LoadModel(bytes.NewReader(raw))
	if err != nil {
		return nil, opts, err
	}
	if o := req.GetFields()["options"].GetStructValue(); o != nil {
		if err := fromStruct(o, &opts); err != nil {
			return nil, opts, fmt.Errorf("%w: options: %v", ErrRequest, err)
		}
	}
	return model, opts, nil
}

func newResponse(resp *checking.Response) (*structpb.Struct, error) {
	_, message := resp.Response()
	violating := []interface{}{}
	for _, s := range resp.Export() {
		violating = append(violating, s)
	}
	return structpb.NewStruct(map[string]interface{}{
		"holds":      resp.Holds,
		"elapsed_ms": float64(resp.Elapsed) / float64(time.Millisecond),
		"message":    message,
		"violating":  violating,
	})
}

func parseResponse(s *structpb.Struct) Result {
	fields := s.GetFields()
	res := Result{
		Holds:   fields["holds"].GetBoolValue(),
		Elapsed: time.Duration(fields["elapsed_ms"].GetNumberValue() * float64(time.Millisecond)),
		Message: fields["message"].GetStringValue(),
	}
	for _, v := range fields["violating"].GetListValue().GetValues() {
		res.Violating = append(res.Violating, int(v.GetNumberValue()))
	}
	return res
}
