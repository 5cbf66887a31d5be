// Package worker implements the protocol between the planner and a
// search running in a separate process. The parent writes one Request
// to the worker's stdin and reads exactly one Response line from its
// stdout.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/solver/search"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

// ErrEmptyResponse is returned by ReadResponse when the worker exited
// without writing a response.
var ErrEmptyResponse = errors.New("worker wrote no response")

type Request struct {
	Problem *model.Problem `json:"problem"`
	Options search.Options `json:"options"`
}

// Response carries the outcome of one search. Exactly one of Plan,
// Sequence, Exhausted and Error is set, except for a run that returned
// nothing at all, which is reported as Empty.
type Response struct {
	Plan       *plan.Encoded     `json:"plan,omitempty"`
	Sequence   [][]string        `json:"sequence,omitempty"`
	Exhausted  bool              `json:"exhausted,omitempty"`
	Statistics *stats.Statistics `json:"statistics,omitempty"`
	Error      string            `json:"error,omitempty"`
	Internal   bool              `json:"internal,omitempty"`
	Empty      bool              `json:"empty,omitempty"`
}

// Handler answers one request.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

type HandlerFunc func(ctx context.Context, req Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve reads one request from r, handles it and writes the response to
// w. A response is written on every path, including a request that
// cannot be decoded and a handler that panics.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h Handler, log logrus.FieldLogger) (err error) {
	var resp Response
	defer func() {
		if v := recover(); v != nil {
			log.WithField("panic", v).Error("worker panicked")
			resp = Response{Error: fmt.Sprintf("worker panicked: %v", v), Internal: true}
		}
		if werr := json.NewEncoder(w).Encode(resp); werr != nil {
			err = errors.Wrap(werr, "writing response")
		}
	}()

	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		resp = Response{Error: errors.Wrap(err, "decoding request").Error()}
		return nil
	}
	if req.Problem == nil {
		resp = Response{Error: "request has no problem"}
		return nil
	}
	log.WithField("problem", req.Problem.Name).Debug("serving request")
	resp = h.Handle(ctx, req)
	return nil
}

// WriteRequest encodes req as a single line.
func WriteRequest(w io.Writer, req Request) error {
	return errors.Wrap(json.NewEncoder(w).Encode(req), "writing request")
}

// ReadResponse decodes the response a worker wrote to r.
func ReadResponse(r io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return Response{}, ErrEmptyResponse
		}
		return Response{}, errors.Wrap(err, "decoding response")
	}
	return resp, nil
}
