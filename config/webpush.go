package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/kochabx/webpush/log"
	"github.com/kochabx/webpush/log/desensitize"
	"github.com/kochabx/webpush/store/redis"
)

// WebPush is the configuration of the webpush command, usually webpush.yaml.
// Every key can be overridden by an environment variable, e.g. PUSH_WORKERS.
type WebPush struct {
	VAPID VAPID `json:"vapid" mapstructure:"vapid"`
	Push  Push  `json:"push" mapstructure:"push"`
	// Redis enables the shared VAPID token cache and the rate limit when addrs is set.
	Redis redis.Config `json:"redis" mapstructure:"redis"`
	Log   Log          `json:"log" mapstructure:"log"`
}

// VAPID identifies the application server.
type VAPID struct {
	PrivateKeyFile string        `json:"private_key_file" mapstructure:"private_key_file"`
	PublicKeyFile  string        `json:"public_key_file" mapstructure:"public_key_file"`
	Subject        string        `json:"subject" mapstructure:"subject" validate:"omitempty,vapidsub"`
	Expiration     time.Duration `json:"expiration" mapstructure:"expiration" validate:"gt=0,lte=24h"`
}

// Push holds delivery defaults.
type Push struct {
	TTL     time.Duration `json:"ttl" mapstructure:"ttl" validate:"gte=0"`
	Urgency string        `json:"urgency" mapstructure:"urgency" validate:"urgency"`
	Topic   string        `json:"topic" mapstructure:"topic" validate:"omitempty,topic"`
	Workers int           `json:"workers" mapstructure:"workers" validate:"gte=1,lte=1024"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// RateLimit applies per push service host and needs Redis.
	RateLimit RateLimit `json:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimit allows Limit pushes per Window; zero Limit disables it.
type RateLimit struct {
	Limit  int           `json:"limit" mapstructure:"limit" validate:"gte=0"`
	Window time.Duration `json:"window" mapstructure:"window" validate:"gte=1ms"`
}

// Log selects the logger of the command.
type Log struct {
	Level  string         `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Output string         `json:"output" mapstructure:"output" validate:"oneof=console file multi"`
	File   log.FileConfig `json:"file" mapstructure:"file"`
	Caller bool           `json:"caller" mapstructure:"caller"`
	// Desensitize names the masking rules, see desensitize.Names.
	// Empty means desensitize.DefaultRuleNames; add "email" to mask the VAPID subject.
	Desensitize []string `json:"desensitize" mapstructure:"desensitize"`
}

// Defaults implements Defaulter.
func (c *WebPush) Defaults() {
	if c.VAPID.Expiration == 0 {
		c.VAPID.Expiration = 12 * time.Hour
	}
	if c.Push.TTL == 0 {
		c.Push.TTL = 24 * time.Hour
	}
	if c.Push.Urgency == "" {
		c.Push.Urgency = "normal"
	}
	if c.Push.Workers == 0 {
		c.Push.Workers = 8
	}
	if c.Push.Timeout == 0 {
		c.Push.Timeout = 30 * time.Second
	}
	if c.Push.RateLimit.Window == 0 {
		c.Push.RateLimit.Window = time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Output == "" {
		c.Log.Output = "console"
	}
	c.Redis.Defaults()
	c.Log.File.Defaults()
}

// NewLogger builds the configured logger. Output is masked with the Desensitize rules.
func (c *Log) NewLogger() (*log.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	names := c.Desensitize
	if len(names) == 0 {
		names = desensitize.DefaultRuleNames()
	}
	hook, err := desensitize.NewHookByName(names...)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{
		log.WithLevel(level),
		log.WithDesensitize(hook),
	}
	if c.Caller {
		opts = append(opts, log.WithCaller())
	}

	switch c.Output {
	case "file":
		return log.NewFile(c.File, opts...)
	case "multi":
		return log.NewMulti(c.File, opts...)
	default:
		return log.New(opts...), nil
	}
}
