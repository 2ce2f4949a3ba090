package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type NotificationServiceImpl struct {
	mailer Mailer
	sender string
}

func CreateNotificationService(mailer Mailer, sender string) NotificationService {
	return &NotificationServiceImpl{mailer: mailer, sender: sender}
}

func orderConfirmationBody(order dto.OrderCreated) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order!</h2><p>Order number: %s</p><p>Placed: %s</p><ul>", order.Number, utils.FormatTimestamp(order.Timestamp))
	for _, product := range order.Products {
		fmt.Fprintf(&b, "<li>%s x %d @ $%.2f</li>", product.Name, product.QuantityOrdered, product.Price)
	}
	fmt.Fprintf(&b, "</ul><p>Total: $%.2f</p>", order.Total)

	return b.String()
}

// HandleEvent mails an order confirmation for every order_created event.
func (s *NotificationServiceImpl) HandleEvent(ctx context.Context, msg dto.KafkaMessage) (err error) {
	if msg.EventType != dto.EventOrderCreated {
		return nil
	}

	var order dto.OrderCreated
	if err = decodeEventData(msg.Data, &order); err != nil {
		return
	}

	if order.UserEmail == "" {
		log.Ctx(ctx).Warn().Str("component", "NotificationService").Str("order_id", order.OrderID).Msg("order has no email address")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.sender)
	m.SetHeader("To", order.UserEmail)
	m.SetHeader("Subject", "AstroMart order confirmation "+order.Number)
	m.SetBody("text/html", orderConfirmationBody(order))

	if err = s.mailer.Send(m); err != nil {
		return fmt.Errorf("failed to send confirmation for order %s: %w", order.OrderID, err)
	}

	log.Ctx(ctx).Info().Str("component", "NotificationService").Str("order_id", order.OrderID).Msg("confirmation sent")

	return nil
}
