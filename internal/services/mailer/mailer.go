// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mailer delivers outbound mail through the first reachable SMTP
// provider, falling back to an in-memory capture sink for environments
// without mail infrastructure.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"github.com/wneessen/go-mail"
)

var (
	// ErrUnavailable is returned when no provider and no sink is active.
	ErrUnavailable = errors.New("mail delivery unavailable")
	// ErrSendFailed is returned when the active provider fails at send time.
	// There is no per-message re-probing of other providers; callers handle
	// the failure locally.
	ErrSendFailed = errors.New("mail send failed")
)

// SinkProvider is the provider name reported for the capture sink.
const SinkProvider = "sink"

// Message is an outbound mail.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Result reports which provider handled a delivery. PreviewURL is only set
// for the capture sink.
type Result struct {
	Provider   string
	MessageID  string
	PreviewURL string
}

// Mailer hands messages to the provider selected at startup. The selection
// is immutable after New returns; the Mailer is safe for concurrent use.
type Mailer struct {
	cfg    *config.MailConfig
	active *config.SMTPConfig // nil when running on the sink
	sink   *Sink
	logger *slog.Logger
}

// New probes the configured providers in order with a bounded connectivity
// check and captures the first that answers as the active provider for the
// process lifetime. When every probe fails, or no provider is configured,
// the capture sink becomes active and the process runs in degraded mode.
func New(ctx context.Context, cfg *config.MailConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}

	for _, p := range cfg.Providers {
		if err := probe(ctx, &p); err != nil {
			logger.Warn("smtp_probe_failed", "provider", p.Name, "host", p.Host, "error", err)
			continue
		}
		logger.Info("mailer_ready", "provider", p.Name, "host", p.Host)
		return &Mailer{cfg: cfg, active: &p, logger: logger}
	}

	logger.Warn("mailer_degraded", "provider", SinkProvider,
		"reason", "no working SMTP configuration, captured mail is not delivered")
	return &Mailer{cfg: cfg, sink: NewSink(), logger: logger}
}

// Degraded reports whether the mailer runs on the capture sink.
func (m *Mailer) Degraded() bool {
	return m.sink != nil
}

// ActiveProvider returns the name of the provider selected at startup.
func (m *Mailer) ActiveProvider() string {
	if m.active != nil {
		return m.active.Name
	}
	return SinkProvider
}

// Sink returns the capture sink, or nil when a real provider is active.
func (m *Mailer) Sink() *Sink {
	return m.sink
}

// Send hands the message to the provider selected at startup. A failure of
// the send call itself surfaces as ErrSendFailed; siblings are not retried.
func (m *Mailer) Send(ctx context.Context, msg *Message) (*Result, error) {
	if m.sink != nil {
		return m.sink.Accept(msg), nil
	}
	if m.active == nil {
		return nil, ErrUnavailable
	}

	out := mail.NewMsg()
	if m.cfg.FromName != "" {
		if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := out.From(m.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := newClient(m.active)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	sendCtx := ctx
	if m.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, m.cfg.SendTimeout)
		defer cancel()
	}

	if err := client.DialAndSendWithContext(sendCtx, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	return &Result{Provider: m.active.Name}, nil
}

// probe performs the startup connectivity check for a provider.
func probe(ctx context.Context, p *config.SMTPConfig) error {
	client, err := newClient(p)
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return err
	}
	return client.Close()
}

// newClient builds a go-mail client from a provider configuration.
func newClient(p *config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(p.Port),
	}

	if p.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if p.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if p.Username != "" && p.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(p.Username),
			mail.WithPassword(p.Password),
		)
	}

	return mail.NewClient(p.Host, opts...)
}
