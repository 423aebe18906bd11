package cmd

import (
	"time"

	cli "github.com/urfave/cli/v3"
)

// Flag names shared by the binaries.
const (
	FlagDatabaseURL       = "database-url"
	FlagEventBus          = "event-bus"
	FlagKafkaBrokers      = "kafka-brokers"
	FlagRedisURL          = "redis-url"
	FlagLogLevel          = "log-level"
	FlagLogFormat         = "log-format"
	FlagLogRetention      = "log-retention"
	FlagRetentionSchedule = "retention-schedule"
	FlagOtelEnabled       = "otel"
)

// CommonFlags are the storage, transport and logging flags every binary takes.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagDatabaseURL,
			Usage:   "Database connection URL for persistence (file path or postgres://)",
			Value:   "file://./data",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    FlagEventBus,
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS"),
		},
		&cli.StringFlag{
			Name:    FlagKafkaBrokers,
			Usage:   "Comma separated Kafka brokers",
			Value:   "localhost:9092",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.StringFlag{
			Name:    FlagRedisURL,
			Usage:   "Redis URL for sessions and completion counters (in-memory when empty)",
			Sources: cli.EnvVars("REDIS_URL"),
		},
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    FlagOtelEnabled,
			Usage:   "Export traces with OTLP over HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
	}
}

// RetentionFlags configure the completion log pruner.
func RetentionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    FlagLogRetention,
			Usage:   "Delete completion logs older than this (0 keeps them forever)",
			Value:   0,
			Sources: cli.EnvVars("LOG_RETENTION"),
		},
		&cli.StringFlag{
			Name:    FlagRetentionSchedule,
			Usage:   "Cron schedule of the log pruning job",
			Value:   "@daily",
			Sources: cli.EnvVars("RETENTION_SCHEDULE"),
		},
	}
}

// DefaultShutdownTimeout bounds graceful shutdowns.
const DefaultShutdownTimeout = 10 * time.Second
