package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Marlvin12/perfit/internal/types"
)

func (r *Router) getAuthState(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.store.AuthState(ctx)
}

// login stores the session and, when the user already has one, their avatar
func (r *Router) login(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[LoginRequest](r, payload)
	if err != nil {
		return nil, err
	}

	resp, err := r.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return r.startSession(ctx, resp.User, resp.Token, resp.RefreshToken)
}

func (r *Router) register(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[RegisterRequest](r, payload)
	if err != nil {
		return nil, err
	}

	resp, err := r.api.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	return r.startSession(ctx, resp.User, resp.Token, resp.RefreshToken)
}

func (r *Router) startSession(ctx context.Context, user types.User, token, refreshToken string) (*LoginResult, error) {
	if err := r.store.SetAuthToken(ctx, token); err != nil {
		return nil, err
	}
	if err := r.store.SetRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	if err := r.store.SetUser(ctx, user); err != nil {
		return nil, err
	}

	var avatar *types.Avatar
	if user.AvatarID != nil && *user.AvatarID != "" {
		avatar = r.api.GetAvatar(ctx, *user.AvatarID)
		if avatar != nil {
			if err := r.store.SetAvatar(ctx, *avatar); err != nil {
				return nil, err
			}
		}
	}

	r.logger.Infof("Signed in as %s", user.Email)
	return &LoginResult{User: user, Avatar: avatar}, nil
}

func (r *Router) logout(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := r.store.ClearAuth(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Router) getAvatar(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.store.Avatar(ctx)
}

// createAvatar stores the new avatar and links it to the stored user
func (r *Router) createAvatar(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[CreateAvatarRequest](r, payload)
	if err != nil {
		return nil, err
	}

	avatar, err := r.api.CreateAvatar(ctx, req.Photo, req.Measurements)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetAvatar(ctx, *avatar); err != nil {
		return nil, err
	}

	user, err := r.store.User(ctx)
	if err != nil {
		return nil, err
	}
	if user != nil {
		id := avatar.ID
		user.AvatarID = &id
		if err := r.store.SetUser(ctx, *user); err != nil {
			return nil, err
		}
	}

	return avatar, nil
}

// getAvatarStatus polls the avatar and refreshes the stored copy
func (r *Router) getAvatarStatus(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[IDRequest](r, payload)
	if err != nil {
		return nil, err
	}

	avatar, err := r.api.AvatarStatus(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	stored, err := r.store.Avatar(ctx)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.ID == avatar.ID {
		if err := r.store.SetAvatar(ctx, *avatar); err != nil {
			return nil, err
		}
	}

	return avatar, nil
}

func (r *Router) tryOn(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[types.TryOnRequest](r, payload)
	if err != nil {
		return nil, err
	}

	result, err := r.api.TryOn(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := r.store.AddTryOnResult(ctx, *result); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Router) getTryOnResult(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[IDRequest](r, payload)
	if err != nil {
		return nil, err
	}
	return r.store.FindTryOnResult(ctx, req.ID)
}

func (r *Router) getTryOnHistory(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.store.TryOnHistory(ctx)
}

// detectProduct runs detection over the supplied snapshot, or fetches the page
func (r *Router) detectProduct(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[DetectProductRequest](r, payload)
	if err != nil {
		return nil, err
	}

	if req.HTML != "" {
		return r.detector.DetectHTML(req.URL, req.HTML)
	}

	report, err := r.detector.Detect(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to detect product on %s: %w", req.URL, err)
	}
	return report, nil
}

func (r *Router) getSizeRecommendation(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := decode[SizeRecommendationRequest](r, payload)
	if err != nil {
		return nil, err
	}
	return r.api.SizeRecommendation(ctx, req.AvatarID, req.ProductID, req.Brand)
}

func (r *Router) getSettings(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.store.Settings(ctx)
}

// updateSettings merges a partial payload into the stored settings
func (r *Router) updateSettings(ctx context.Context, payload json.RawMessage) (any, error) {
	return r.store.UpdateSettings(ctx, func(settings *types.Settings) error {
		return r.decodeInto(payload, settings)
	})
}
