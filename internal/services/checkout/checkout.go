// Package checkout creates Stripe checkout sessions for courses. It is a
// pass-through to Stripe: no Payment row is written here, payment records
// stay an admin-entered concern.
package checkout

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/price"
	"github.com/stripe/stripe-go/v79/product"

	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Session is the result handed back to the client.
type Session struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	ProductID string `json:"productId"`
	PriceID   string `json:"priceId"`
}

// Service talks to the Stripe API.
type Service struct {
	cfg config.StripeConfig
}

// NewService configures the Stripe client and returns the service.
func NewService(cfg config.StripeConfig) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{cfg: cfg}
}

// Enabled reports whether a Stripe key is configured.
func (s *Service) Enabled() bool {
	return s.cfg.SecretKey != ""
}

// CreateCourseSession builds product, price and checkout session for a
// course purchase. Metadata carries the course and user so a later
// reconciliation can match the session.
func (s *Service) CreateCourseSession(courseID, userID, title, description string, amount types.Money) (*Session, error) {
	prod, err := product.New(&stripe.ProductParams{
		Name:        stripe.String(title),
		Description: stripe.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create product: %w", err)
	}

	currency := s.cfg.Currency
	if currency == "" {
		currency = "usd"
	}

	pr, err := price.New(&stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(amount.Cents()),
		Currency:   stripe.String(currency),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create price: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(pr.ID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.AddMetadata("course_id", courseID)
	params.AddMetadata("user_id", userID)
	params.AddMetadata("type", "course")

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &Session{
		SessionID: sess.ID,
		URL:       sess.URL,
		ProductID: prod.ID,
		PriceID:   pr.ID,
	}, nil
}
