package router

import (
	"context"
	"net/http"

	"ws-gateway/internal/gateway"
)

// Event kinds the transport layer produces.
const (
	KindConnect    = "connect"
	KindDisconnect = "disconnect"
	KindMessage    = "message"
)

// Event is the envelope for one inbound transport occurrence. Credential
// is set on connect events only, Payload on message events only.
type Event struct {
	Kind         string
	ConnectionID string
	Credential   string
	Payload      string
}

// Response is handed back to the transport layer. Body is empty unless
// the transition produced one.
type Response struct {
	StatusCode int
	Body       string
}

// Router maps events onto gateway transitions. It holds no state and adds
// no behavior beyond dispatch; an unknown kind answers 400 and touches
// nothing.
type Router struct {
	gw *gateway.Gateway
}

func New(gw *gateway.Gateway) *Router {
	return &Router{gw: gw}
}

func (r *Router) Dispatch(ctx context.Context, ev Event) Response {
	switch ev.Kind {
	case KindConnect:
		return toResponse(r.gw.Connect(ctx, ev.ConnectionID, ev.Credential))
	case KindDisconnect:
		return toResponse(r.gw.Disconnect(ctx, ev.ConnectionID))
	case KindMessage:
		return toResponse(r.gw.Message(ctx, ev.ConnectionID, ev.Payload))
	default:
		return Response{StatusCode: http.StatusBadRequest}
	}
}

func toResponse(res gateway.Result) Response {
	return Response{StatusCode: res.StatusCode, Body: res.Body}
}
