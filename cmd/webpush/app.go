package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kochabx/webpush/config"
	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/core/rate"
	"github.com/kochabx/webpush/core/vapid"
	rediscache "github.com/kochabx/webpush/core/vapid/cache/redis"
	"github.com/kochabx/webpush/log"
	"github.com/kochabx/webpush/store/redis"
)

const appName = "webpush"

// CLI 命令行定义
type CLI struct {
	Config string `short:"c" long:"config" help:"Path to the configuration file; missing file means defaults" default:"webpush.yaml"`

	Keygen struct {
		Dir     string `short:"d" help:"Output directory" default:"."`
		Private string `help:"Private key filename" default:"private.pem"`
		Public  string `help:"Public key filename" default:"public.pem"`
	} `cmd:"" help:"Generate a VAPID key pair as PEM files."`

	Pubkey struct {
		Key string `short:"k" help:"Private key PEM file, defaults to vapid.private_key_file"`
	} `cmd:"" help:"Print the applicationServerKey (base64url uncompressed point)."`

	Header struct {
		Endpoint string        `short:"e" required:"" help:"Push endpoint the token is issued for"`
		Key      string        `short:"k" help:"Private key PEM file, defaults to vapid.private_key_file"`
		Subject  string        `short:"s" help:"sub claim, defaults to vapid.subject"`
		Expires  time.Duration `help:"Token lifetime, defaults to vapid.expiration"`
	} `cmd:"" help:"Print the VAPID Authorization header for an endpoint."`

	Encrypt struct {
		Subscription string `short:"s" required:"" type:"existingfile" help:"Subscription JSON file"`
		Message      string `short:"m" xor:"payload" help:"Message text"`
		File         string `short:"f" xor:"payload" type:"existingfile" help:"Message file"`
		Out          string `short:"o" help:"Write the raw record to this file instead of base64url to stdout"`
	} `cmd:"" help:"Encrypt a message for a subscription (aes128gcm)."`

	Decrypt struct {
		Key  string `short:"k" required:"" type:"existingfile" help:"User agent private key PEM file"`
		Auth string `short:"a" required:"" help:"User agent auth secret, base64url"`
		In   string `short:"i" xor:"record" type:"existingfile" help:"Raw record file"`
		Data string `short:"d" xor:"record" help:"Record as base64url"`
	} `cmd:"" help:"Decrypt an aes128gcm record with the user agent keys."`

	Send struct {
		Subscriptions []string      `short:"s" required:"" help:"Subscription JSON files" sep:","`
		Message       string        `short:"m" help:"Message text; omit to send a push without payload"`
		Key           string        `short:"k" help:"Private key PEM file, defaults to vapid.private_key_file"`
		TTL           time.Duration `default:"-1ns" help:"TTL, 0 asks for immediate delivery or drop; negative uses push.ttl"`
		Urgency       string        `short:"u" help:"very-low, low, normal or high, defaults to push.urgency"`
		Topic         string        `short:"t" help:"Topic, defaults to push.topic"`
	} `cmd:"" help:"Send a message to one or more subscriptions."`
}

// App webpush 命令行应用
type App struct {
	stdout io.Writer
	cfg    config.WebPush
	logger *log.Logger
	redis  *redis.Client
}

// NewApp 创建应用，命令结果写入 stdout
func NewApp(stdout io.Writer) *App {
	return &App{stdout: stdout}
}

// Run 解析参数并执行命令
func (a *App) Run(ctx context.Context, args []string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name(appName),
		kong.Description("Web Push toolkit: VAPID keys, aes128gcm payloads and delivery."),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := config.New(&a.cfg, config.WithFile(cli.Config, true), config.WithWatch(false)).Load(); err != nil {
		return err
	}
	a.logger, err = a.cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer a.logger.Close()
	log.SetGlobalLogger(a.logger)
	defer a.closeRedis()

	a.logger.Debug().Str("command", kctx.Command()).Str("config", cli.Config).Msg("starting")

	switch kctx.Command() {
	case "keygen":
		return a.runKeygen(cli)
	case "pubkey":
		return a.runPubkey(cli)
	case "header":
		return a.runHeader(ctx, cli)
	case "encrypt":
		return a.runEncrypt(cli)
	case "decrypt":
		return a.runDecrypt(cli)
	case "send":
		return a.runSend(ctx, cli)
	default:
		return fmt.Errorf("unknown command %q", kctx.Command())
	}
}

// loadPrivateKey 读取 VAPID 私钥，flag 优先于配置
func (a *App) loadPrivateKey(flag string) (*key.PrivateKey, error) {
	path := flag
	if path == "" {
		path = a.cfg.VAPID.PrivateKeyFile
	}
	if path == "" {
		return nil, fmt.Errorf("no private key: pass --key or set vapid.private_key_file")
	}
	return key.LoadPrivateKeyPEM(path)
}

// keyPair 构建 VAPID 密钥对，配置了 redis 时共享 token 缓存
func (a *App) keyPair(ctx context.Context, flag string) (*vapid.KeyPair, error) {
	priv, err := a.loadPrivateKey(flag)
	if err != nil {
		return nil, err
	}

	pub := priv.Public()
	if a.cfg.VAPID.PublicKeyFile != "" && flag == "" {
		pub, err = key.LoadPublicKeyPEM(a.cfg.VAPID.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		if !pub.Equal(priv.Public()) {
			return nil, fmt.Errorf("%s does not match the private key", a.cfg.VAPID.PublicKeyFile)
		}
	}

	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	var opts []vapid.KeyPairOption
	if client != nil {
		var cacheOpts []rediscache.Option
		if client.KeyPrefix() != "" {
			cacheOpts = append(cacheOpts, rediscache.WithKeyPrefix(client.KeyPrefix()+"vapid:"))
		}
		opts = append(opts, vapid.WithTokenCache(rediscache.NewTokenCache(client.UniversalClient(), cacheOpts...)))
	}
	return vapid.NewKeyPair(priv, pub, opts...)
}

// limiter 按推送服务限流，需要 redis
func (a *App) limiter(ctx context.Context) (rate.Limiter, error) {
	rl := a.cfg.Push.RateLimit
	if rl.Limit == 0 {
		return nil, nil
	}
	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.logger.Warn().Msg("push.rate_limit requires redis.addrs, rate limit disabled")
		return nil, nil
	}
	var opts []rate.Option
	if client.KeyPrefix() != "" {
		opts = append(opts, rate.WithKeyPrefix(client.KeyPrefix()+"rate:"))
	}
	return rate.NewSlidingWindowLimiter(client.UniversalClient(), rl.Window, rl.Limit, opts...)
}

// redisClient 未配置 redis.addrs 时返回 nil
func (a *App) redisClient(ctx context.Context) (*redis.Client, error) {
	if !a.cfg.Redis.Enabled() {
		return nil, nil
	}
	if a.redis == nil {
		client, err := redis.New(ctx, &a.cfg.Redis, redis.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.redis = client
	}
	return a.redis, nil
}

func (a *App) closeRedis() {
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
}
