package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/hydrocore/waterworks/internal/config"
)

const (
	keyLoginIP    = "login:ip:%s"
	keyLoginEmail = "login:email:%s"
)

// LoginLimiter throttles login attempts per client address and per account
// so that a credential stuffing run exhausts its budget quickly without
// locking out well-behaved users behind the same NAT.
type LoginLimiter struct {
	enabled bool

	bucket *TokenBucket

	ipRate     float64
	ipBurst    int
	emailRate  float64
	emailBurst int
}

func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	if !cfg.LoginRateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("login rate limit requires a redis addr")
	}
	if cfg.LoginIPRate <= 0 || cfg.LoginIPBurst <= 0 {
		return nil, errors.New("login ip rate limit must be positive")
	}
	if cfg.LoginEmailRate <= 0 || cfg.LoginEmailBurst <= 0 {
		return nil, errors.New("login email rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &LoginLimiter{
		enabled:    true,
		bucket:     NewTokenBucket(client),
		ipRate:     cfg.LoginIPRate,
		ipBurst:    cfg.LoginIPBurst,
		emailRate:  cfg.LoginEmailRate,
		emailBurst: cfg.LoginEmailBurst,
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow checks both buckets for a login attempt. The first denied bucket
// wins; its RetryAfter tells the caller how long to back off.
func (l *LoginLimiter) Allow(ctx context.Context, ip, email string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}

	if ip = strings.TrimSpace(ip); ip != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, ip), l.ipRate, l.ipBurst)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return res, nil
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginEmail, email), l.emailRate, l.emailBurst)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return res, nil
		}
	}

	return &RateLimitResult{Allowed: true}, nil
}
