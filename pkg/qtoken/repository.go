package qtoken

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quatton/qtoken/pkg/config"
	"github.com/quatton/qtoken/pkg/kv"
	"github.com/quatton/qtoken/pkg/qerr"
	"github.com/quatton/qtoken/pkg/qlog"
)

// ErrExpiredToken is returned, wrapped in a qerr.CodeExpiredToken error,
// when a token is offered for storage after its expiry.
var ErrExpiredToken = errors.New("token has already expired")

// Options tune a Repository. The zero value is usable.
type Options struct {
	// Prefix namespaces every key; defaults to config.DefaultKeyPrefix.
	Prefix string
	// Timeout bounds each operation on top of the caller's context.
	// Zero leaves only the caller's deadline.
	Timeout time.Duration
	// Codec encodes stored tokens; defaults to MsgpackCodec.
	Codec Codec
	// Logger defaults to qlog.Discard.
	Logger *qlog.Logger
	// Now is the clock used for expiry checks and TTLs.
	Now func() time.Time
}

// Repository keeps tokens in a kv.Store until they expire. It holds no
// token state of its own; every call is a round trip to the store.
type Repository struct {
	store   kv.Store
	codec   Codec
	prefix  string
	timeout time.Duration
	now     func() time.Time
	log     *qlog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewRepository wraps store. The repository owns the store from then on
// and closes it in Close.
func NewRepository(store kv.Store, opts Options) *Repository {
	r := &Repository{
		store:   store,
		codec:   opts.Codec,
		prefix:  opts.Prefix,
		timeout: opts.Timeout,
		now:     opts.Now,
		log:     opts.Logger,
	}
	if r.codec == nil {
		r.codec = MsgpackCodec{}
	}
	if r.prefix == "" {
		r.prefix = config.DefaultKeyPrefix
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log == nil {
		r.log = qlog.Discard()
	}
	r.log = r.log.With("component", "qtoken", "codec", r.codec.Name())
	return r
}

// Open connects to the store described by cfg, single node or sentinel.
func Open(cfg *config.Config, logger *qlog.Logger) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ResolvePassword(); err != nil {
		return nil, err
	}
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	store, err := kv.NewValkeyStore(kv.ValkeyConfig{
		Addrs:      cfg.RedisAddrs,
		MasterName: cfg.RedisMasterName,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		Timeout:    cfg.RedisTimeout,
	})
	if err != nil {
		return nil, qerr.New(qerr.CodeTransport, err)
	}

	return NewRepository(store, Options{
		Prefix:  cfg.KeyPrefix,
		Timeout: cfg.RedisTimeout,
		Codec:   codec,
		Logger:  logger,
	}), nil
}

// Insert stores token under a freshly minted proxy with a TTL that ends at
// the token's expiry. An already expired token is rejected before the
// store is contacted.
func (r *Repository) Insert(ctx context.Context, token *Token) (Proxy, error) {
	now := r.now()
	if err := checkToken(token, now); err != nil {
		return Proxy{}, err
	}

	proxy := NewProxy(token.EntityType, token.TokenType)
	key := proxy.Key(r.prefix)

	value, err := r.encode(token)
	if err != nil {
		return Proxy{}, err
	}
	ttl := ttlFor(token.Expiry, now)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Set(ctx, key, value, ttl); err != nil {
		return Proxy{}, transportError("insert", key, err)
	}

	r.log.Debug("token inserted", "key", key, "ttl", ttl)
	return proxy, nil
}

// Get returns the token stored under proxy, or nil if there is none. A
// token past its expiry is gone from the store and reads as nil too.
func (r *Repository) Get(ctx context.Context, proxy Proxy) (*Token, error) {
	if err := checkProxy(proxy); err != nil {
		return nil, err
	}
	key := proxy.Key(r.prefix)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			r.log.Debug("token not found", "key", key)
			return nil, nil
		}
		return nil, transportError("get", key, err)
	}
	return r.decode(proxy, key, data)
}

// Update replaces the token under proxy and resets its TTL to the new
// expiry, returning the token it replaced. When nothing is stored under
// proxy nothing is written and nil is returned.
func (r *Repository) Update(ctx context.Context, proxy Proxy, token *Token) (*Token, error) {
	now := r.now()
	if err := checkToken(token, now); err != nil {
		return nil, err
	}
	if err := checkProxy(proxy); err != nil {
		return nil, err
	}
	if !proxy.Matches(token) {
		return nil, qerr.Newf(qerr.CodeInvalidToken, "token %s/%s does not match proxy %s",
			token.EntityType, token.TokenType, proxy)
	}
	key := proxy.Key(r.prefix)

	value, err := r.encode(token)
	if err != nil {
		return nil, err
	}
	ttl := ttlFor(token.Expiry, now)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	prev, err := r.store.Replace(ctx, key, value, ttl)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			r.log.Debug("update skipped, token not found", "key", key)
			return nil, nil
		}
		return nil, transportError("update", key, err)
	}

	r.log.Debug("token updated", "key", key, "ttl", ttl)
	return r.decode(proxy, key, prev)
}

// Remove deletes the token under proxy and returns it, or nil if there was
// none.
func (r *Repository) Remove(ctx context.Context, proxy Proxy) (*Token, error) {
	if err := checkProxy(proxy); err != nil {
		return nil, err
	}
	key := proxy.Key(r.prefix)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	prev, err := r.store.Take(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, transportError("remove", key, err)
	}

	r.log.Debug("token removed", "key", key)
	return r.decode(proxy, key, prev)
}

// Ping checks that the store answers within the operation timeout.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Ping(ctx); err != nil {
		return qerr.New(qerr.CodeTransport, fmt.Errorf("qtoken: ping: %w", err))
	}
	return nil
}

// Close releases the store's connections. Only the first call has an
// effect; later calls return the first call's result.
func (r *Repository) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.store.Close()
	})
	return r.closeErr
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repository) encode(token *Token) ([]byte, error) {
	value, err := r.codec.Marshal(token)
	if err != nil {
		return nil, qerr.New(qerr.CodeIntegrity, fmt.Errorf("qtoken: encode %s: %w", token, err))
	}
	return value, nil
}

// decode treats anything that is not a token of the proxy's classification
// as corruption, never as a miss.
func (r *Repository) decode(proxy Proxy, key string, data []byte) (*Token, error) {
	var token Token
	if err := r.codec.Unmarshal(data, &token); err != nil {
		r.log.Error("stored token is unreadable", "key", key, "error", err)
		return nil, qerr.New(qerr.CodeIntegrity, fmt.Errorf("qtoken: decode %s: %w", key, err))
	}
	if !proxy.Matches(&token) {
		r.log.Error("stored token has the wrong classification", "key", key,
			"entity_type", token.EntityType, "token_type", token.TokenType)
		return nil, qerr.Newf(qerr.CodeIntegrity, "qtoken: %s holds a %s/%s token", key, token.EntityType, token.TokenType)
	}
	return &token, nil
}

func checkToken(token *Token, now time.Time) error {
	if token == nil {
		return qerr.Newf(qerr.CodeInvalidToken, "qtoken: nil token")
	}
	if token.EntityType == "" || token.TokenType == "" {
		return qerr.Newf(qerr.CodeInvalidToken, "qtoken: token %s is missing its classification", token)
	}
	if token.HasExpired(now) {
		return qerr.New(qerr.CodeExpiredToken, ErrExpiredToken)
	}
	return nil
}

func checkProxy(proxy Proxy) error {
	if !proxy.Valid() {
		return qerr.Newf(qerr.CodeInvalidProxy, "qtoken: incomplete proxy %q", proxy.String())
	}
	return nil
}

func transportError(op, key string, err error) error {
	return qerr.New(qerr.CodeTransport, fmt.Errorf("qtoken: %s %s: %w", op, key, err))
}

// ttlFor rounds the time left until expiry up to whole seconds, the
// granularity of EX. Rounding up keeps a token that passed the expiry check
// alive for at least one second instead of writing a zero TTL.
func ttlFor(expiry, now time.Time) time.Duration {
	left := expiry.Sub(now)
	if left <= 0 {
		return time.Second
	}
	return ((left + time.Second - 1) / time.Second) * time.Second
}
