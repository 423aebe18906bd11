package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/formtrigger/pkg/channels/gochannel"
	"github.com/dukex/formtrigger/pkg/channels/kafka"
	"github.com/dukex/formtrigger/pkg/eventbus"
)

const serviceName = "formtrigger"

// NewEventBus creates the event bus for provider. "gochannel" only connects
// components living in the same process.
func NewEventBus(provider, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, kafka.ParseBrokers(brokers), serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "gochannel", "":
		pub, sub := gochannel.CreateChannel(watermillLogger)

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
