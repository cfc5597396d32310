package api

import (
	"context"
	"fmt"
	"time"

	"github.com/Marlvin12/perfit/internal/types"
)

// DefaultPollInterval is the delay between status polls
const DefaultPollInterval = 2 * time.Second

// WaitForAvatar polls an avatar until it is ready or failed, giving up after
// AvatarGenerationTimeout
func (c *Client) WaitForAvatar(ctx context.Context, id string, interval time.Duration) (*types.Avatar, error) {
	var avatar *types.Avatar
	err := c.poll(ctx, AvatarGenerationTimeout, interval, func(ctx context.Context) (bool, error) {
		current, err := c.AvatarStatus(ctx, id)
		if err != nil {
			return false, err
		}
		avatar = current
		return current.Status.Terminal(), nil
	})
	if err != nil {
		return avatar, fmt.Errorf("avatar %s: %w", id, err)
	}
	return avatar, nil
}

// WaitForTryOn polls a try-on job until its image is available, giving up
// after TryOnTimeout
func (c *Client) WaitForTryOn(ctx context.Context, jobID string, interval time.Duration) (*types.TryOnResult, error) {
	var result *types.TryOnResult
	err := c.poll(ctx, TryOnTimeout, interval, func(ctx context.Context) (bool, error) {
		current, err := c.TryOnStatus(ctx, jobID)
		if err != nil {
			return false, err
		}
		result = current
		return current.ImageURL != "", nil
	})
	if err != nil {
		return result, fmt.Errorf("try-on %s: %w", jobID, err)
	}
	return result, nil
}

func (c *Client) poll(ctx context.Context, timeout, interval time.Duration, check func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return ErrTimeout
			}
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
