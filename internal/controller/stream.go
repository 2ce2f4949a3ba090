package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alimikegami/astromart/internal/infrastructure/metrics"
	"github.com/alimikegami/astromart/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const heartbeatInterval = 15 * time.Second

func openStream(e echo.Context) {
	res := e.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()
}

func writeEvent(e echo.Context, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	res := e.Response()
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	res.Flush()

	return nil
}

// streamEvents forwards sub to the client as server-sent events until the
// client goes away or the subscription ends. The subscription is closed on
// return.
func streamEvents[V any](e echo.Context, storeName string, sub *store.Subscription[V], send func(store.Event[V]) error) error {
	defer sub.Close()

	gauge := metrics.StoreSubscribers.WithLabelValues(storeName)
	gauge.Inc()
	defer gauge.Dec()

	ctx := e.Request().Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := send(event); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("component", "streamEvents").Str("store", storeName).Msg("")
				return nil
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(e.Response(), ": ping\n\n"); err != nil {
				return nil
			}
			e.Response().Flush()
		}
	}
}
