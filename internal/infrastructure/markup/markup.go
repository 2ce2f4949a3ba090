// Package markup talks to the markdown rendering service.
package markup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alimikegami/astromart/config"
	circuitbreaker "github.com/alimikegami/astromart/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/astromart/internal/infrastructure/metrics"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const circuitName = "markup-service"

type Client struct {
	http *resty.Client
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func CreateClient(conf config.MarkupConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(conf.ServiceHost).
		SetTimeout(conf.Timeout).
		SetRetryCount(0).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	return &Client{
		http: httpClient,
		cb:   circuitbreaker.CreateCircuitBreaker(circuitName),
	}
}

// Render converts markdown to HTML. Any failure, including an open breaker,
// is reported as errs.ErrBadGateway.
func (c *Client) Render(ctx context.Context, markdown string) (string, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "text/markdown").
			SetBody(markdown).
			Post("/v1/md2html")
		if err != nil {
			return nil, err
		}

		if resp.IsError() {
			return nil, fmt.Errorf("markup service returned status %d", resp.StatusCode())
		}

		return resp.Body(), nil
	})
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(circuitName).Inc()
		log.Ctx(ctx).Error().Err(err).Str("component", "Render").Msg("")
		return "", fmt.Errorf("%w: %v", errs.ErrBadGateway, err)
	}

	return string(body), nil
}
