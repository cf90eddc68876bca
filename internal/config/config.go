// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	TokenSecret string        // HMAC signing secret for bearer tokens
	SessionTTL  time.Duration // validity of full session tokens
	PendingTTL  time.Duration // validity of two-factor-pending tokens
	CodeTTL     time.Duration // validity of one-time codes
	ExposeCode  bool          // include the plaintext code in responses (dev only)
}

type MailConfig struct { //nolint:govet // fieldalignment not critical for config structs
	From        string
	FromName    string
	SendTimeout time.Duration
	Providers   []SMTPConfig // probed in order at startup
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Name     string
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: cmd.String("host"),
			Port: int(cmd.Int("port")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			TokenSecret: cmd.String("token-secret"),
			SessionTTL:  cmd.Duration("session-ttl"),
			PendingTTL:  cmd.Duration("pending-token-ttl"),
			CodeTTL:     cmd.Duration("code-ttl"),
			ExposeCode:  cmd.Bool("expose-code"),
		},
		Mail: MailConfig{
			From:        cmd.String("mail-from"),
			FromName:    cmd.String("mail-from-name"),
			SendTimeout: cmd.Duration("mail-send-timeout"),
		},
	}

	cfg.Mail.Providers = smtpProviders(cmd)

	return cfg
}

// smtpProviders collects the configured SMTP providers in failover order.
// A provider without a host is treated as unconfigured and skipped.
func smtpProviders(cmd *cli.Command) []SMTPConfig {
	var providers []SMTPConfig
	for _, name := range []string{"primary", "secondary"} {
		p := SMTPConfig{
			Name:     name,
			Host:     cmd.String("smtp-" + name + "-host"),
			Port:     int(cmd.Int("smtp-" + name + "-port")),
			Username: cmd.String("smtp-" + name + "-username"),
			Password: cmd.String("smtp-" + name + "-password"),
			TLS:      cmd.Bool("smtp-" + name + "-tls"),
		}
		if p.Host == "" {
			continue
		}
		providers = append(providers, p)
	}
	return providers
}

func Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   5000,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/inventory.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "token-secret",
			Value:   "devsecret",
			Usage:   "Signing secret for bearer tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_SECRET"), toml.TOML("auth.token_secret", configFile)),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   time.Hour,
			Usage:   "Validity of session tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_TTL"), toml.TOML("auth.session_ttl", configFile)),
		},
		&cli.DurationFlag{
			Name:    "pending-token-ttl",
			Value:   10 * time.Minute,
			Usage:   "Validity of two-factor-pending tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PENDING_TOKEN_TTL"), toml.TOML("auth.pending_token_ttl", configFile)),
		},
		&cli.DurationFlag{
			Name:    "code-ttl",
			Value:   5 * time.Minute,
			Usage:   "Validity of one-time verification codes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CODE_TTL"), toml.TOML("auth.code_ttl", configFile)),
		},
		&cli.BoolFlag{
			Name:    "expose-code",
			Usage:   "Include the plaintext verification code in responses (never enable in production)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("EXPOSE_CODE"), toml.TOML("auth.expose_code", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Value:   "no-reply@inventory.local",
			Usage:   "From address for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM"), toml.TOML("mail.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Usage:   "Display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		&cli.DurationFlag{
			Name:    "mail-send-timeout",
			Value:   10 * time.Second,
			Usage:   "Timeout for a single mail send",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_SEND_TIMEOUT"), toml.TOML("mail.send_timeout", configFile)),
		},
	}

	flags = append(flags, smtpFlags("primary")...)
	flags = append(flags, smtpFlags("secondary")...)

	return flags
}

func smtpFlags(name string) []cli.Flag {
	envPrefix := "SMTP_" + strings.ToUpper(name) + "_"
	tomlPrefix := "smtp." + name + "."
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "smtp-" + name + "-host",
			Usage:   "SMTP host for the " + name + " provider",
			Sources: cli.NewValueSourceChain(cli.EnvVar(envPrefix+"HOST"), toml.TOML(tomlPrefix+"host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-" + name + "-port",
			Value:   587,
			Usage:   "SMTP port for the " + name + " provider",
			Sources: cli.NewValueSourceChain(cli.EnvVar(envPrefix+"PORT"), toml.TOML(tomlPrefix+"port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-" + name + "-username",
			Usage:   "SMTP username for the " + name + " provider",
			Sources: cli.NewValueSourceChain(cli.EnvVar(envPrefix+"USER"), toml.TOML(tomlPrefix+"username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-" + name + "-password",
			Usage:   "SMTP password for the " + name + " provider",
			Sources: cli.NewValueSourceChain(cli.EnvVar(envPrefix+"PASS"), toml.TOML(tomlPrefix+"password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-" + name + "-tls",
			Value:   true,
			Usage:   "Use TLS for the " + name + " provider",
			Sources: cli.NewValueSourceChain(cli.EnvVar(envPrefix+"TLS"), toml.TOML(tomlPrefix+"tls", configFile)),
		},
	}
}
