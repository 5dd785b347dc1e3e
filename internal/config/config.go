// Package config holds the process-lifetime settings shared by the
// server and client: the derived symmetric key, the replay-history depth
// bound, and the socket timeouts.
package config

import (
	"crypto/sha256"
	"os"
	"strings"
	"time"
)

// Defaults, per spec.md section 4.6.
const (
	DefaultPort          = 3666
	DefaultHistoryDepth  = 100_000
	DefaultPassword      = "1e$tob5UtRi6oFr8jlYO"
	DefaultConnectTimeout = 5 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	// DefaultClientReadTimeout and DefaultServerReadTimeout diverge, per
	// spec.md's open question in section 9: one observed revision of the
	// original source used 5s on both sides, another used 30s on the
	// server. This implementation keeps them distinct and tunable,
	// favoring a longer server-side read timeout since the server is
	// waiting on an arbitrary remote client rather than a client waiting
	// on its own just-opened connection.
	DefaultClientReadTimeout = 5 * time.Second
	DefaultServerReadTimeout = 30 * time.Second
)

// passwordEnvDigest is the SHA-256 digest of the name of the environment
// variable that, when present, overrides the compiled-in default
// password. The name itself is not compiled in cleartext.
var passwordEnvDigest = [32]byte{
	0xed, 0x1f, 0xfe, 0xcd, 0x33, 0x8d, 0x97, 0x1c, 0x8e, 0x47, 0x4e, 0xa5,
	0x30, 0x7a, 0xb8, 0x71, 0x9b, 0xe7, 0x1b, 0xf5, 0xcf, 0xdc, 0x47, 0x0b,
	0x90, 0x8b, 0x22, 0x6f, 0x97, 0x68, 0x42, 0x43,
}

// Config is read-only after construction and safe to share across the
// server's connection workers.
type Config struct {
	Key            [32]byte
	HistoryDepth   int
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
}

// Option customizes a Config built by New.
type Option func(*Config)

// WithHistoryDepth overrides the replay-history depth bound.
func WithHistoryDepth(depth int) Option {
	return func(c *Config) { c.HistoryDepth = depth }
}

// WithReadTimeout overrides the single-read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithWriteTimeout overrides the single-write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) { c.WriteTimeout = d }
}

// WithConnectTimeout overrides the client connect timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnectTimeout = d }
}

// New builds a Config for the server role: key derivation plus defaults,
// with DefaultServerReadTimeout as the base read timeout.
func New(opts ...Option) *Config {
	c := &Config{
		Key:            deriveKey(effectivePassword()),
		HistoryDepth:   DefaultHistoryDepth,
		ConnectTimeout: DefaultConnectTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		ReadTimeout:    DefaultServerReadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient builds a Config for the client role: identical key derivation,
// but with DefaultClientReadTimeout as the base read timeout.
func NewClient(opts ...Option) *Config {
	c := New()
	c.ReadTimeout = DefaultClientReadTimeout
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func deriveKey(password string) [32]byte {
	return sha256.Sum256([]byte(password))
}

// effectivePassword scans the process environment for a variable whose
// name hashes, under SHA-256, to passwordEnvDigest. If found, its value is
// taken as the password and the variable is cleared so it does not linger
// in the environment of child processes spawned later. If no such
// variable exists, the compiled-in default is used.
func effectivePassword() string {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if sha256.Sum256([]byte(name)) == passwordEnvDigest {
			os.Unsetenv(name)
			return value
		}
	}
	return DefaultPassword
}
