package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Marlvin12/perfit/api"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/storage"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownMessageType is returned for a message type with no handler
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrInvalidPayload is returned when a payload does not decode or validate
	ErrInvalidPayload = errors.New("invalid payload")
)

// APIClient is the part of the PerFit API the router calls
type APIClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
	GetAvatar(ctx context.Context, id string) *types.Avatar
	CreateAvatar(ctx context.Context, photo string, measurements types.Measurements) (*types.Avatar, error)
	AvatarStatus(ctx context.Context, id string) (*types.Avatar, error)
	TryOn(ctx context.Context, req types.TryOnRequest) (*types.TryOnResult, error)
	SizeRecommendation(ctx context.Context, avatarID, productID, brand string) (*types.SizeSuggestion, error)
}

// ProductDetector runs product detection on a fetched or supplied page
type ProductDetector interface {
	Detect(ctx context.Context, rawURL string) (*types.PageReport, error)
	DetectHTML(rawURL string, html string) (*types.PageReport, error)
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Router dispatches messages to their handlers
type Router struct {
	store    *storage.Store
	api      APIClient
	detector ProductDetector
	validate *validator.Validate
	logger   types.Logger
	handlers map[Type]handlerFunc
}

// NewRouter creates a router over the given store, API client and detector
func NewRouter(store *storage.Store, client APIClient, detector ProductDetector, logger types.Logger) *Router {
	r := &Router{
		store:    store,
		api:      client,
		detector: detector,
		validate: validator.New(),
		logger:   logger,
	}

	r.handlers = map[Type]handlerFunc{
		GetAuthState:          r.getAuthState,
		Login:                 r.login,
		Register:              r.register,
		Logout:                r.logout,
		GetAvatar:             r.getAvatar,
		CreateAvatar:          r.createAvatar,
		GetAvatarStatus:       r.getAvatarStatus,
		TryOn:                 r.tryOn,
		GetTryOnResult:        r.getTryOnResult,
		GetTryOnHistory:       r.getTryOnHistory,
		DetectProduct:         r.detectProduct,
		GetSizeRecommendation: r.getSizeRecommendation,
		GetSettings:           r.getSettings,
		UpdateSettings:        r.updateSettings,
	}

	return r
}

// Types lists the message types the router handles
func (r *Router) Types() []Type {
	list := make([]Type, 0, len(r.handlers))
	for t := range r.handlers {
		list = append(list, t)
	}
	return list
}

// Dispatch runs the handler for msg and returns its data
func (r *Router) Dispatch(ctx context.Context, msg Message) (any, error) {
	handler, ok := r.handlers[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}
	return handler(ctx, msg.Payload)
}

// Handle runs the handler for msg and wraps the outcome in a Response
func (r *Router) Handle(ctx context.Context, msg Message) Response {
	data, err := r.Dispatch(ctx, msg)
	if err != nil {
		r.logger.Warnf("Message %s failed: %v", msg.Type, err)
	}
	return NewResponse(data, err)
}

// NewResponse wraps a handler outcome
func NewResponse(data any, err error) Response {
	if err != nil {
		return Response{Success: false, Error: errorMessage(err)}
	}
	return Response{Success: true, Data: data}
}

// errorMessage is the text reported to the extension. API errors carry the
// server's message as is.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnknownMessageType) {
		return "Unknown message type: " + strings.TrimPrefix(err.Error(), ErrUnknownMessageType.Error()+": ")
	}
	return err.Error()
}

// decode unmarshals and validates a payload into T
func decode[T any](r *Router, payload json.RawMessage) (T, error) {
	var req T
	err := r.decodeInto(payload, &req)
	return req, err
}

// decodeInto decodes payload over the current value of req and validates the
// merged result. Fields missing from payload keep their value.
func (r *Router) decodeInto(payload json.RawMessage, req any) error {
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		messages = append(messages, msg)
	}
	return strings.Join(messages, "; ")
}
