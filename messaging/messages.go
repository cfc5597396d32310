// Package messaging routes the extension's background messages.
//
// Every message is an envelope {type, payload}. The payload of each type has
// its own request struct, decoded and validated before the handler runs, and
// every reply is a Response {success, data, error}.
package messaging

import (
	"encoding/json"

	"github.com/Marlvin12/perfit/internal/types"
)

// Type names a message
type Type string

const (
	GetAuthState          Type = "GET_AUTH_STATE"
	Login                 Type = "LOGIN"
	Register              Type = "REGISTER"
	Logout                Type = "LOGOUT"
	GetAvatar             Type = "GET_AVATAR"
	CreateAvatar          Type = "CREATE_AVATAR"
	GetAvatarStatus       Type = "GET_AVATAR_STATUS"
	TryOn                 Type = "TRY_ON"
	GetTryOnResult        Type = "GET_TRY_ON_RESULT"
	GetTryOnHistory       Type = "GET_TRY_ON_HISTORY"
	DetectProduct         Type = "DETECT_PRODUCT"
	GetSizeRecommendation Type = "GET_SIZE_RECOMMENDATION"
	GetSettings           Type = "GET_SETTINGS"
	UpdateSettings        Type = "UPDATE_SETTINGS"
)

// Message is the envelope sent by the extension UI
type Message struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the reply to a Message
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginRequest is the LOGIN payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the REGISTER payload
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// CreateAvatarRequest is the CREATE_AVATAR payload. Photo is base64 encoded.
type CreateAvatarRequest struct {
	Photo        string             `json:"photo" validate:"required,base64"`
	Measurements types.Measurements `json:"measurements"`
}

// IDRequest carries the id of an avatar or try-on result
type IDRequest struct {
	ID string `json:"id" validate:"required"`
}

// DetectProductRequest is the DETECT_PRODUCT payload. When HTML is empty the
// page is fetched from URL.
type DetectProductRequest struct {
	URL  string `json:"url" validate:"required,url"`
	HTML string `json:"html"`
}

// SizeRecommendationRequest is the GET_SIZE_RECOMMENDATION payload
type SizeRecommendationRequest struct {
	AvatarID  string `json:"avatarId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Brand     string `json:"brand" validate:"required"`
}

// LoginResult is returned by LOGIN and REGISTER
type LoginResult struct {
	User   types.User    `json:"user"`
	Avatar *types.Avatar `json:"avatar"`
}
