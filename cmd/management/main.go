package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/hook"
	"github.com/boogah/total-pushover/totalpushover/intercept"
	"github.com/boogah/total-pushover/totalpushover/management"
	"github.com/boogah/total-pushover/totalpushover/pushover"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	app := kingpin.New("management", "Intercept RPC server for Total Pushover")

	AMQPURI := app.Flag("amqp-uri", "The AMQP URI to connect to").Envar("AMQP_URI").Short('u').Required().String()

	token := app.Flag("pushover-token", "Pushover application API token").Envar("PUSHOVER_API_TOKEN").String()
	user := app.Flag("pushover-user", "Pushover user or group key").Envar("PUSHOVER_USER_KEY").String()
	endpoint := app.Flag("pushover-endpoint", "Pushover message API").Default(totalpushover.Endpoint).String()
	timeout := app.Flag("pushover-timeout", "Timeout for Pushover requests").Default(totalpushover.DefaultTimeout.String()).Duration()

	verbose := app.Flag("verbose", "Enables debug logging").Short('v').Bool()
	pretty := app.Flag("pretty", "Enables pretty logging").Short('p').Bool()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg := totalpushover.Config{
		Credentials: totalpushover.Credentials{APIToken: *token, UserKey: *user},
		Endpoint:    *endpoint,
		Timeout:     *timeout,
	}
	if !cfg.Credentials.Enabled() {
		logger.Warn().Msg("Pushover credentials not set, mail will be delivered normally.")
	}

	var dispatcher hook.Dispatcher
	dispatcher.Register(hook.DefaultPriority, intercept.New(cfg, pushover.NewClient(cfg.Endpoint, cfg.Timeout), logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(*AMQPURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error connecting to message broker.")
	}
	defer conn.Close()

	server := &management.Server{
		Logger:     logger,
		Connection: conn,
		Hook:       &dispatcher,
	}
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Error running management server.")
	}
}
