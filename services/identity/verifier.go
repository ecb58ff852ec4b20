package identity

import (
	"context"
	"encoding/json"
	"time"

	"nestly/models"
	"nestly/utils"

	"firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// IDTokenVerifier checks Firebase ID tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// TokenVerifier resolves bearer ID tokens to actors. Verified tokens are
// cached by hash for the rest of their lifetime, capped at AuthCacheTTL.
type TokenVerifier struct {
	Auth   IDTokenVerifier
	Cache  *redis.Client
	Logger *zap.Logger
	Now    func() time.Time
}

func (v *TokenVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (models.Actor, error) {
	if idToken == "" {
		return models.Actor{}, ErrUnauthenticated
	}
	hash := utils.HashToken(idToken)
	key := utils.AuthCachePrefix + hash

	if v.Cache != nil {
		raw, err := v.Cache.Get(ctx, key).Bytes()
		if err == nil {
			var actor models.Actor
			if jsonErr := json.Unmarshal(raw, &actor); jsonErr == nil && actor.ID != "" {
				return actor, nil
			}
		} else if err != redis.Nil && v.Logger != nil {
			v.Logger.Warn("Auth cache lookup failed, verifying token directly", zap.Error(err))
		}
	}

	token, err := v.Auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return models.Actor{}, ErrUnauthenticated
	}
	actor := ActorFromToken(token)

	if v.Cache != nil {
		ttl := time.Unix(token.Expires, 0).Sub(v.now())
		if ttl > utils.AuthCacheTTL {
			ttl = utils.AuthCacheTTL
		}
		if ttl > 0 {
			v.remember(ctx, actor, hash, ttl)
		}
	}
	return actor, nil
}

func (v *TokenVerifier) remember(ctx context.Context, actor models.Actor, hash string, ttl time.Duration) {
	raw, err := json.Marshal(actor)
	if err != nil {
		return
	}
	userKey := utils.AuthUserPrefix + actor.ID
	pipe := v.Cache.TxPipeline()
	pipe.Set(ctx, utils.AuthCachePrefix+hash, raw, ttl)
	pipe.SAdd(ctx, userKey, hash)
	pipe.Expire(ctx, userKey, utils.AuthCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil && v.Logger != nil {
		v.Logger.Warn("Failed to cache verified token", zap.String("uid", actor.ID), zap.Error(err))
	}
}

// ActorFromToken builds the actor snapshot from verified token claims.
func ActorFromToken(token *auth.Token) models.Actor {
	claim := func(name string) string {
		v, _ := token.Claims[name].(string)
		return v
	}
	verified, _ := token.Claims["email_verified"].(bool)
	return models.Actor{
		ID:            token.UID,
		Role:          models.ParseRole(claim(roleClaim)),
		DisplayName:   claim("name"),
		Email:         claim("email"),
		Phone:         claim("phone_number"),
		EmailVerified: verified,
	}
}

// forgetTokens drops every cached token hash recorded for uid.
func forgetTokens(ctx context.Context, cache *redis.Client, uid string) error {
	userKey := utils.AuthUserPrefix + uid
	hashes, err := cache.SMembers(ctx, userKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, utils.AuthCachePrefix+h)
	}
	keys = append(keys, userKey)
	return cache.Del(ctx, keys...).Err()
}
