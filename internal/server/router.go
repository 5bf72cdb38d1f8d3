package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/Domenick1991/flightgate/internal/wire"
)

// HandlerFunc turns a request payload into response data plus a
// human-readable success message. Returned errors are mapped to error
// responses at the dispatch boundary and never affect the connection.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (interface{}, string, error)

// Router dispatches an action name to exactly one handler. The table is
// populated at construction; there is no runtime (de)registration.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Handle(action string, h HandlerFunc) {
	r.handlers[action] = h
}

// Dispatch produces exactly one response for one request.
func (r *Router) Dispatch(ctx context.Context, req *wire.Request) wire.Response {
	handler, ok := r.handlers[req.Action]
	if !ok {
		return wire.Error("unknown action: " + req.Action)
	}

	data, message, err := handler(ctx, req.Data)
	if err != nil {
		return wire.Error(errorMessage(req.Action, err))
	}

	resp := wire.Success(message, data)
	resp.ActionResponse = req.Action
	return resp
}

// errorMessage keeps request-level failures descriptive and everything else
// opaque. Unrecognized errors are storage failures: logged server-side,
// generic on the wire.
func errorMessage(action string, err error) string {
	if domain.IsValidation(err) || domain.IsConflict(err) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadCredentials) {
		return err.Error()
	}

	log.Printf("action %s failed: %v", action, err)
	return "internal storage error"
}
