package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kochabx/webpush/core/ece"
	"github.com/kochabx/webpush/core/key"
	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/vapid"
	"github.com/kochabx/webpush/errors"
)

func (a *App) runKeygen(cli CLI) error {
	priv, err := key.Generate()
	if err != nil {
		return err
	}

	privPath, pubPath, err := key.SavePEM(priv,
		key.WithDirpath(cli.Keygen.Dir),
		key.WithPrivateKeyFilename(cli.Keygen.Private),
		key.WithPublicKeyFilename(cli.Keygen.Public),
	)
	if err != nil {
		return err
	}

	a.logger.Info().Str("private", privPath).Str("public", pubPath).Msg("key pair written")
	_, err = fmt.Fprintln(a.stdout, priv.Public().UncompressedBase64())
	return err
}

func (a *App) runPubkey(cli CLI) error {
	priv, err := a.loadPrivateKey(cli.Pubkey.Key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, priv.Public().UncompressedBase64())
	return err
}

func (a *App) runHeader(ctx context.Context, cli CLI) error {
	kp, err := a.keyPair(ctx, cli.Header.Key)
	if err != nil {
		return err
	}

	expires := cli.Header.Expires
	if expires == 0 {
		expires = a.cfg.VAPID.Expiration
	}
	subject := cli.Header.Subject
	if subject == "" {
		subject = a.cfg.VAPID.Subject
	}

	b := vapid.NewParamBuilder().
		ResourceURLString(cli.Header.Endpoint).
		ExpiresAfter(expires)
	if subject != "" {
		b.Subject(subject)
	}
	param, err := b.Build()
	if err != nil {
		return err
	}

	header, err := kp.AuthorizationHeader(ctx, param)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s: %s\n", push.HeaderAuthorization, header)
	return err
}

func (a *App) runEncrypt(cli CLI) error {
	sub, err := readSubscription(cli.Encrypt.Subscription)
	if err != nil {
		return err
	}
	keys, err := sub.UserAgentKeys()
	if err != nil {
		return err
	}

	var plaintext []byte
	switch {
	case cli.Encrypt.File != "":
		if plaintext, err = os.ReadFile(cli.Encrypt.File); err != nil {
			return err
		}
	case cli.Encrypt.Message != "":
		plaintext = []byte(cli.Encrypt.Message)
	default:
		return fmt.Errorf("one of --message or --file is required")
	}

	record, err := ece.NewEngine().Encrypt(keys, plaintext)
	if err != nil {
		return err
	}
	a.logger.Debug().Int("plaintext", len(plaintext)).Int("record", record.Len()).Msg("message encrypted")

	if cli.Encrypt.Out != "" {
		return os.WriteFile(cli.Encrypt.Out, record.Bytes(), 0o644)
	}
	_, err = fmt.Fprintln(a.stdout, base64.RawURLEncoding.EncodeToString(record.Bytes()))
	return err
}

func (a *App) runDecrypt(cli CLI) error {
	priv, err := key.LoadPrivateKeyPEM(cli.Decrypt.Key)
	if err != nil {
		return err
	}
	keys, err := ece.UserAgentKeysFromBase64(priv.Public().UncompressedBase64(), cli.Decrypt.Auth)
	if err != nil {
		return err
	}

	var record []byte
	switch {
	case cli.Decrypt.In != "":
		if record, err = os.ReadFile(cli.Decrypt.In); err != nil {
			return err
		}
	case cli.Decrypt.Data != "":
		data := strings.TrimRight(strings.TrimSpace(cli.Decrypt.Data), "=")
		if record, err = base64.RawURLEncoding.DecodeString(data); err != nil {
			return fmt.Errorf("record is not valid base64url: %w", err)
		}
	default:
		return fmt.Errorf("one of --in or --data is required")
	}

	plaintext, err := ece.NewEngine().Decrypt(keys, record, priv)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(plaintext)
	return err
}

func (a *App) runSend(ctx context.Context, cli CLI) error {
	kp, err := a.keyPair(ctx, cli.Send.Key)
	if err != nil {
		return err
	}
	limiter, err := a.limiter(ctx)
	if err != nil {
		return err
	}

	ttl := a.cfg.Push.TTL
	if cli.Send.TTL >= 0 {
		ttl = cli.Send.TTL
	}
	urgency := a.cfg.Push.Urgency
	if cli.Send.Urgency != "" {
		urgency = cli.Send.Urgency
	}
	topic := a.cfg.Push.Topic
	if cli.Send.Topic != "" {
		topic = cli.Send.Topic
	}

	base := push.NewRequestBuilder().
		TTL(ttl).
		Urgency(push.Urgency(urgency)).
		VAPIDExpiresAfter(a.cfg.VAPID.Expiration)
	if topic != "" {
		base.Topic(topic)
	}
	if a.cfg.VAPID.Subject != "" {
		base.VAPIDSubject(a.cfg.VAPID.Subject)
	}
	if cli.Send.Message != "" {
		base.Text(cli.Send.Message)
	}

	builders := make([]*push.RequestBuilder, 0, len(cli.Send.Subscriptions))
	for _, file := range cli.Send.Subscriptions {
		sub, err := readSubscription(file)
		if err != nil {
			return err
		}
		builders = append(builders, base.Clone().Subscription(sub))
	}

	opts := []push.SenderOption{
		push.WithTimeout(a.cfg.Push.Timeout),
		push.WithWorkers(a.cfg.Push.Workers),
		push.WithLogger(a.logger),
	}
	if limiter != nil {
		opts = append(opts, push.WithLimiter(limiter))
	}
	sender := push.NewSender(opts...)

	start := time.Now()
	results := sender.Broadcast(ctx, kp, builders)

	var failed int
	for _, r := range results {
		file := cli.Send.Subscriptions[r.Index]
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(a.stdout, "%s\terror\t%s\t%v\n", file, errors.Reason(r.Err), r.Err)
		default:
			s := r.Response.Status
			if !s.IsSuccess() {
				failed++
			}
			fmt.Fprintf(a.stdout, "%s\t%d\t%s\tremove=%t\tretry=%t\n",
				file, r.Response.StatusCode, s, s.ShouldRemoveSubscription(), s.ShouldRetryLater())
		}
	}

	a.logger.Info().
		Int("total", len(results)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("broadcast finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d pushes failed", failed, len(results))
	}
	return nil
}

func readSubscription(file string) (*push.Subscription, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	sub, err := push.ParseSubscription(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return sub, nil
}
