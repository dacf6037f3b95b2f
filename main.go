package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DavidGamba/go-getoptions"
	"github.com/cyverse-de/go-mod/otelutils"
	"github.com/cyverse-de/quiet-hours/config"
	"github.com/cyverse-de/quiet-hours/db"
	"github.com/cyverse-de/quiet-hours/handlers"
	"github.com/cyverse-de/quiet-hours/handlerset"
	"github.com/cyverse-de/quiet-hours/ledger"
	"github.com/cyverse-de/quiet-hours/logging"
	"github.com/cyverse-de/quiet-hours/mailer"
	"github.com/cyverse-de/quiet-hours/reconciler"
	"github.com/gin-gonic/gin"
)

const serviceName = "quiet-hours"

var log = logging.Log

// commandLineOptionValues represents the values of the command-line options that were passed on the command line when
// this service was invoked.
type commandLineOptionValues struct {
	Config   string
	LogLevel string
	Port     int
	Once     bool
	Sweep    bool
}

func parseCommandLine() *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	// Define the command-line options.
	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.Config, "config", config.DefaultConfigPath,
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))
	opt.StringVar(&optionValues.LogLevel, "log-level", "info",
		opt.Description("the minimum level of log messages to record"))
	opt.IntVar(&optionValues.Port, "port", 0,
		opt.Alias("p"),
		opt.Description("the port to listen on, overriding the configuration file"))
	opt.BoolVar(&optionValues.Once, "once", false,
		opt.Description("run a single reconciliation pass and exit"))
	opt.BoolVar(&optionValues.Sweep, "sweep", false,
		opt.Description("remove quiet hour blocks that have already ended and exit"))

	// Parse the command line, handling requests for help and usage errors.
	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}

	return optionValues
}

// newTransport creates the outbound mail transport selected in the configuration.
func newTransport(cfg *config.Config) (mailer.Transport, io.Closer, error) {
	if cfg.MailTransport == config.TransportAMQP {
		transport, err := mailer.NewAMQPTransport(&cfg.AMQP)
		if err != nil {
			return nil, nil, err
		}
		return transport, transport, nil
	}
	return mailer.NewSMTPTransport(&cfg.SMTP), nil, nil
}

// openLedger connects to the notification ledger. The returned ledger is nil if no ledger is configured or
// the connection fails, in which case the job relies on the notified flag alone.
func openLedger(cfg *config.Config) (reconciler.Ledger, io.Closer) {
	if cfg.LedgerURI == "" {
		return nil, nil
	}
	l, err := ledger.Open(cfg.LedgerDriver, cfg.LedgerURI)
	if err != nil {
		log.WithError(err).Warn("unable to connect to the notification ledger; continuing without it")
		return nil, nil
	}
	return l, l
}

// serve runs the HTTP server until the process receives a termination signal.
func serve(cfg *config.Config, hs *handlerset.HandlerSet) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ListenPort),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("listening on port %d", cfg.ListenPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	// Parse the command-line.
	optionValues := parseCommandLine()

	// Initialize logging.
	if err := logging.SetupLogging(optionValues.LogLevel); err != nil {
		log.Fatal(err)
	}

	// Initialize tracing.
	tracerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdown := otelutils.TracerProviderFromEnv(tracerCtx, serviceName, func(e error) { log.Fatal(e) })
	defer shutdown()

	// Read in the configuration file.
	cfg, err := config.Load(optionValues.Config)
	if err != nil {
		log.Fatal(err)
	}
	if optionValues.Port != 0 {
		cfg.ListenPort = optionValues.Port
	}
	location, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	// Connect to the database containing the quiet hour blocks and users.
	database, err := db.InitDatabase("postgres", cfg.DatabaseURI)
	if err != nil {
		log.Fatal(err)
	}
	dbClient := db.NewClient(database)
	closers := []io.Closer{dbClient}

	// Connect to the notification ledger if one is configured.
	notificationLedger, ledgerCloser := openLedger(cfg)
	if ledgerCloser != nil {
		closers = append(closers, ledgerCloser)
	}

	// Create the mailer.
	transport, transportCloser, err := newTransport(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if transportCloser != nil {
		closers = append(closers, transportCloser)
	}
	reminderMailer := mailer.New(transport, location)

	job := reconciler.New(dbClient, notificationLedger, dbClient, reminderMailer, reconciler.Settings{
		Buffer:   cfg.Buffer,
		Horizon:  cfg.Horizon,
		Location: location,
	})

	gin.SetMode(gin.ReleaseMode)
	hs := handlerset.New(
		&handlerset.Settings{Secret: cfg.CronSecret, AllowedOrigins: cfg.AllowedOrigins},
		handlers.NewReconcile(job),
		handlers.NewBlocks(dbClient),
		closers...,
	)
	defer hs.Close()

	switch {
	case optionValues.Sweep:
		if _, err := job.Sweep(context.Background()); err != nil {
			log.Error(err)
		}
	case optionValues.Once:
		report, err := job.Run(context.Background())
		if err != nil {
			log.Error(err)
			break
		}
		log.Infof("processing complete: %d eligible, %d sent, %d skipped",
			report.Count, report.Sent(), report.Skipped())
	default:
		if err := serve(cfg, hs); err != nil {
			log.Error(err)
		}
	}
}
