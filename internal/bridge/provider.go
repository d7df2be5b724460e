// Package bridge is the entry point of the SDK. A Provider owns the
// configuration, the transport and the current session; the Client it hands
// out gates every resource operation on that session and its roles.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/cache"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Provider holds one account's connection to a Bridge server. Providers are
// independent of each other and safe for concurrent use.
type Provider struct {
	cfg     *config.Config
	api     *api.Client
	session atomic.Pointer[api.Session]
	closers []func() error
}

// Option configures a Provider.
type Option func(*providerOptions)

type providerOptions struct {
	apiOpts []api.Option
	store   cache.Store
}

// WithAPIOptions passes options through to the transport.
func WithAPIOptions(opts ...api.Option) Option {
	return func(o *providerOptions) {
		o.apiOpts = append(o.apiOpts, opts...)
	}
}

// WithCache uses s for immutable responses instead of the store selected by
// Settings.Cache.
func WithCache(s cache.Store) Option {
	return func(o *providerOptions) {
		o.store = s
	}
}

// NewProvider creates a signed-out Provider for the server in cfg.
func NewProvider(cfg *config.Config, settings config.Settings, opts ...Option) (*Provider, error) {
	if cfg == nil {
		return nil, &api.ArgumentError{Name: "config", Reason: "must not be nil"}
	}
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}

	p := &Provider{cfg: cfg}
	store := o.store
	if store == nil {
		var err error
		store, err = p.newStore(cfg.Host(), settings)
		if err != nil {
			return nil, err
		}
	}

	apiOpts := append([]api.Option{api.WithCache(store)}, o.apiOpts...)
	p.api = api.NewFromConfig(cfg, settings, apiOpts...)
	signedOut := api.Session{}
	p.session.Store(&signedOut)
	return p, nil
}

func (p *Provider) newStore(host string, settings config.Settings) (cache.Store, error) {
	switch settings.Cache {
	case config.CacheFile:
		dir := settings.CacheDir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, &config.InvalidConfigError{Key: "BRIDGE_CACHE_DIR", Reason: "no cache directory available", Err: err}
			}
		}
		return cache.NewFileStore(dir, host, settings.CacheTTL), nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		p.closers = append(p.closers, client.Close)
		return cache.NewRedisStore(client, host, settings.CacheTTL), nil
	default:
		return cache.Nop{}, nil
	}
}

// SignIn authenticates username and makes the result the current session.
// On failure the current session is left signed out.
func (p *Provider) SignIn(ctx context.Context, username, password string) (api.Session, error) {
	session, err := p.api.Auth().Authenticate(ctx, username, password)
	if err != nil {
		p.storeSession(p.Session().SignedOut())
		return api.Session{}, err
	}
	p.storeSession(session)
	return session, nil
}

// SignInParticipant signs in with the configured participant account.
func (p *Provider) SignInParticipant(ctx context.Context) (api.Session, error) {
	return p.SignIn(ctx, p.cfg.ParticipantEmail(), p.cfg.ParticipantPassword())
}

// SignInAdmin signs in with the configured admin account.
func (p *Provider) SignInAdmin(ctx context.Context) (api.Session, error) {
	return p.SignIn(ctx, p.cfg.AdminEmail(), p.cfg.AdminPassword())
}

// SignOut ends the current session. The Provider is signed out afterwards
// even when the server call fails; that failure is still returned.
func (p *Provider) SignOut(ctx context.Context) error {
	current := p.Session()
	out, err := p.api.Auth().SignOut(ctx, current)
	p.storeSession(out)
	if err != nil {
		slog.Debug("sign-out request failed, session discarded locally", "error", err)
	}
	return err
}

// Resume installs a session obtained earlier, such as one read back from
// the keyring.
func (p *Provider) Resume(session api.Session) error {
	if !session.SignedIn() {
		return &api.ArgumentError{Name: "session", Reason: "must be signed in"}
	}
	p.storeSession(session)
	return nil
}

// Session returns the current session.
func (p *Provider) Session() api.Session {
	return *p.session.Load()
}

// IsSignedIn reports whether the current session carries a token.
func (p *Provider) IsSignedIn() bool {
	return p.Session().SignedIn()
}

// Roles returns the roles of the current session.
func (p *Provider) Roles() Roles {
	return RolesOf(p.Session())
}

// Client returns the role-gated operations for the current session.
func (p *Provider) Client() *Client {
	return &Client{provider: p}
}

// Config returns the configuration the Provider was built from.
func (p *Provider) Config() *config.Config {
	return p.cfg
}

// API returns the underlying transport for callers that need raw access.
func (p *Provider) API() *api.Client {
	return p.api
}

// Close releases idle connections and any cache connection. The Provider
// must not be used afterwards.
func (p *Provider) Close() error {
	p.api.CloseIdleConnections()
	var result *multierror.Error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	p.closers = nil
	return result.ErrorOrNil()
}

func (p *Provider) storeSession(s api.Session) {
	p.session.Store(&s)
}

func (p *Provider) String() string {
	return fmt.Sprintf("Provider{host=%s, session=%s}", strings.TrimSuffix(p.cfg.Host(), "/"), p.Session())
}
