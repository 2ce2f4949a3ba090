package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alimikegami/astromart/internal/dto"
	"github.com/rs/zerolog/log"
)

type EventHandler func(ctx context.Context, msg dto.KafkaMessage) error

// ConsumeEvents reads from reader until ctx is cancelled. Malformed messages
// and handler failures are logged and skipped.
func ConsumeEvents(ctx context.Context, reader MessageReader, component string, handle EventHandler) {
	logger := log.With().Str("component", component).Logger()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Info().Msg("consumer stopped")
				return
			}
			logger.Error().Err(err).Msg("")
			continue
		}

		var receivedMsg dto.KafkaMessage
		if err := json.Unmarshal(msg.Value, &receivedMsg); err != nil {
			logger.Error().Err(err).Msg("")
			continue
		}

		logger.Debug().Str("event_type", receivedMsg.EventType).Int64("offset", msg.Offset).Msg("received message")

		if err := handle(logger.WithContext(ctx), receivedMsg); err != nil {
			logger.Error().Err(err).Str("event_type", receivedMsg.EventType).Msg("")
		}
	}
}
