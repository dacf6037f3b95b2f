// Package config loads the service configuration. Settings are read from a YAML file, and secrets and
// connection strings may be overridden from the environment, optionally populated from .env files.
package config

import (
	"os"
	"strings"
	"time"

	// Embeds the time zone database so that the display time zone can always be loaded.
	_ "time/tzdata"

	"github.com/cyverse-de/configurate"
	"github.com/cyverse-de/quiet-hours/common"
	"github.com/cyverse-de/quiet-hours/logging"
	"github.com/cyverse-de/quiet-hours/mailer"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "config"})

// DefaultConfigPath is the location of the configuration file when none is given on the command line.
const DefaultConfigPath = "/etc/quiet-hours/quiet-hours.yml"

// Mail transports.
const (
	TransportSMTP = "smtp"
	TransportAMQP = "amqp"
)

// DefaultConfig contains the default configuration settings.
const DefaultConfig = `
db:
  uri: ""
ledger:
  driver: postgres
  uri: ""
mailer:
  transport: smtp
smtp:
  host: ""
  port: 587
  user: ""
  password: ""
  from: '"Quiet Hours" <noreply@example.com>'
amqp:
  uri: ""
  exchange:
    name: de
reconcile:
  buffer: 5m
  horizon: 60m
  timezone: Asia/Kolkata
cron:
  secret: ""
listen:
  port: 8080
cors:
  allowed-origins: []
`

// envFiles are loaded, when present, before the environment is consulted.
var envFiles = []string{".env.local", ".env"}

// Overrides contains the settings that may be supplied through the environment.
type Overrides struct {
	CronSecret   string `envconfig:"CRON_SECRET"`
	DatabaseURI  string `envconfig:"DATABASE_URI"`
	LedgerDriver string `envconfig:"LEDGER_DRIVER"`
	LedgerURI    string `envconfig:"LEDGER_URI"`
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASS"`
	AMQPURI      string `envconfig:"AMQP_URI"`
}

// Config contains the service configuration.
type Config struct {
	DatabaseURI    string
	LedgerDriver   string
	LedgerURI      string
	MailTransport  string
	SMTP           mailer.SMTPSettings
	AMQP           common.AMQPSettings
	Buffer         time.Duration
	Horizon        time.Duration
	Timezone       string
	CronSecret     string
	ListenPort     int
	AllowedOrigins []string
}

// LoadEnvFiles loads environment variables from any .env files in the working directory. Variables that
// are already set are left alone.
func LoadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.WithError(err).Warnf("unable to load %s", path)
			continue
		}
		log.Infof("loaded environment variables from %s", path)
	}
}

// readConfig reads the configuration file, falling back to the defaults if the file doesn't exist.
func readConfig(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err == nil {
		return configurate.InitDefaults(path, DefaultConfig)
	}

	log.Warnf("configuration file %s not found; using the defaults", path)
	cfg := viper.New()
	cfg.SetConfigType("yaml")
	if err := cfg.ReadConfig(strings.NewReader(DefaultConfig)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration file and applies overrides from the environment.
func Load(path string) (*Config, error) {
	wrapMsg := "unable to load the configuration"

	LoadEnvFiles()

	cfg, err := readConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	config := &Config{
		DatabaseURI:   cfg.GetString("db.uri"),
		LedgerDriver:  cfg.GetString("ledger.driver"),
		LedgerURI:     cfg.GetString("ledger.uri"),
		MailTransport: cfg.GetString("mailer.transport"),
		SMTP: mailer.SMTPSettings{
			Host:     cfg.GetString("smtp.host"),
			Port:     cfg.GetInt("smtp.port"),
			Username: cfg.GetString("smtp.user"),
			Password: cfg.GetString("smtp.password"),
			From:     cfg.GetString("smtp.from"),
		},
		AMQP: common.AMQPSettings{
			URI:          cfg.GetString("amqp.uri"),
			ExchangeName: cfg.GetString("amqp.exchange.name"),
		},
		Buffer:         cfg.GetDuration("reconcile.buffer"),
		Horizon:        cfg.GetDuration("reconcile.horizon"),
		Timezone:       cfg.GetString("reconcile.timezone"),
		CronSecret:     cfg.GetString("cron.secret"),
		ListenPort:     cfg.GetInt("listen.port"),
		AllowedOrigins: cfg.GetStringSlice("cors.allowed-origins"),
	}

	var overrides Overrides
	if err := envconfig.Process("", &overrides); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	config.Apply(&overrides)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return config, nil
}

// Apply replaces configuration settings with any overrides that were provided.
func (c *Config) Apply(o *Overrides) {
	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	override(&c.CronSecret, o.CronSecret)
	override(&c.DatabaseURI, o.DatabaseURI)
	override(&c.LedgerDriver, o.LedgerDriver)
	override(&c.LedgerURI, o.LedgerURI)
	override(&c.SMTP.Host, o.SMTPHost)
	override(&c.SMTP.Username, o.SMTPUser)
	override(&c.SMTP.Password, o.SMTPPassword)
	override(&c.AMQP.URI, o.AMQPURI)
	if o.SMTPPort != 0 {
		c.SMTP.Port = o.SMTPPort
	}
}

// Validate checks the configuration for settings that would prevent the service from starting. Missing
// ledger settings and a missing trigger secret are tolerated, but logged.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return errors.New("no database URI is configured")
	}
	if c.Buffer < 0 || c.Horizon < 0 {
		return errors.New("the reconciliation buffer and horizon may not be negative")
	}
	switch c.MailTransport {
	case TransportSMTP:
		if c.SMTP.Host == "" {
			return errors.New("no SMTP host is configured")
		}
	case TransportAMQP:
		if c.AMQP.URI == "" {
			return errors.New("no AMQP URI is configured")
		}
	default:
		return errors.Errorf("unsupported mail transport: %s", c.MailTransport)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.LedgerURI == "" {
		log.Warn("no ledger URI is configured; the notification ledger will be disabled")
	}
	if c.CronSecret == "" {
		log.Warn("no trigger secret is configured; every trigger request will be rejected")
	}
	return nil
}

// Location returns the display time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid time zone: %s", c.Timezone)
	}
	return loc, nil
}
