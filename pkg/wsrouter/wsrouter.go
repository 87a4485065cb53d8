package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrMalformedPayload   = errors.New("malformed payload")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler is called with any error returned from a handler. Returning a
// non-nil error from it terminates the connection's serve loop.
type ErrorHandler func(ctx context.Context, conn *websocket.Conn, err error) error

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
	errHandler  ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

func (r *WSRouter) HandleError(handler ErrorHandler) {
	r.errHandler = handler
}

// HandleTyped registers a handler taking a decoded payload. A payload that
// does not unmarshal into T is reported through the router's error handler
// before any further processing.
func HandleTyped[T any](r *WSRouter, messageType string, handler func(ctx context.Context, conn *websocket.Conn, input T) error) {
	r.Handle(messageType, func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
			}
		}

		return handler(ctx, conn, input)
	})
}

// ServeConn reads messages from the connection until it fails, dispatching
// each to its registered handler. Messages of one connection are processed
// strictly in receipt order.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			handler = func(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
				return ErrUnknownMessageType
			}
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			if r.errHandler == nil {
				return err
			}
			if err := r.errHandler(msgCtx, conn, err); err != nil {
				return err
			}
		}
	}
}
