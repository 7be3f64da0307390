package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/boogah/total-pushover/totalpushover/routing"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	app := kingpin.New("router", "Outgoing mail router for Total Pushover")

	AMQPURI := app.Flag("amqp-uri", "The AMQP URI to connect to").Envar("AMQP_URI").Short('u').Required().String()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := routing.Router{
		MQURI:  *AMQPURI,
		Logger: logger,
	}

	if err := router.New(); err != nil {
		logger.Fatal().Err(err).Msg("Error initializing router.")
	}
	defer router.Close()
	if err := router.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Error running router.")
	}
}
