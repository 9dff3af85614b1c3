package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is the integration point with an external payment provider.
// A declined charge is reported with approved=false and a reason, not an error;
// errors mean the provider could not be reached.
type Gateway interface {
	Charge(ctx context.Context, p *Payment) (approved bool, reason string, err error)
	Refund(ctx context.Context, p *Payment, amount decimal.Decimal) error
}
