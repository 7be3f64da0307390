package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/admin"
	"github.com/boogah/total-pushover/totalpushover/hook"
	"github.com/boogah/total-pushover/totalpushover/intercept"
	"github.com/boogah/total-pushover/totalpushover/notice"
	"github.com/boogah/total-pushover/totalpushover/pushover"
	"github.com/boogah/total-pushover/totalpushover/web"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	app := kingpin.New("web", "Admin screen and mail hook for Total Pushover")

	bind := app.Flag("bind", "The address to bind to").Default("[::]:8080").Short('b').String()

	token := app.Flag("pushover-token", "Pushover application API token").Envar("PUSHOVER_API_TOKEN").String()
	user := app.Flag("pushover-user", "Pushover user or group key").Envar("PUSHOVER_USER_KEY").String()
	endpoint := app.Flag("pushover-endpoint", "Pushover message API").Default(totalpushover.Endpoint).String()
	timeout := app.Flag("pushover-timeout", "Timeout for Pushover requests").Default(totalpushover.DefaultTimeout.String()).Duration()

	storeDriver := app.Flag("notice-store", "Where admin notices are kept").Default("memory").Enum("memory", "redis")
	redisAddr := app.Flag("redis-addr", "Redis address for the redis notice store").Envar("REDIS_ADDR").Default("localhost:6379").String()

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

	store, err := notice.New(context.Background(), notice.Config{
		Driver:    *storeDriver,
		RedisAddr: *redisAddr,
		Prefix:    totalpushover.Exchange,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing notice store.")
	}

	client := pushover.NewClient(cfg.Endpoint, cfg.Timeout)

	var dispatcher hook.Dispatcher
	dispatcher.Register(hook.DefaultPriority, intercept.New(cfg, client, logger))

	api := &web.API{
		Logger:     logger,
		Hook:       &dispatcher,
		Tester:     &admin.Tester{Credentials: cfg.Credentials, Sender: client, Store: store, Logger: logger},
		Notices:    &admin.Notices{Store: store, Logger: logger},
		Configured: cfg.Credentials.Enabled(),
	}
	if err := api.Run(*bind); err != nil {
		logger.Fatal().Err(err).Msg("Error running web server.")
	}
}
