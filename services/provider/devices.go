package provider

import (
	"context"
	"strings"

	"nestly/models"
)

// RegisterDeviceToken stores the push token that booking notifications are
// delivered to. A provider has a single active device; the latest token wins.
func (s *DefaultProviderService) RegisterDeviceToken(ctx context.Context, actor models.Actor, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return newError(ErrInvalidProfile, "Device token is required")
	}
	_, err := s.apply(ctx, actor, models.ProviderPatch{DeviceToken: &token})
	return err
}

// ClearDeviceToken stops push delivery, e.g. on sign-out.
func (s *DefaultProviderService) ClearDeviceToken(ctx context.Context, actor models.Actor) error {
	empty := ""
	_, err := s.apply(ctx, actor, models.ProviderPatch{DeviceToken: &empty})
	return err
}
