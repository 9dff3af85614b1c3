package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	dompay "github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
	"github.com/shopspring/decimal"
)

const paymentDeclinedReason = "payment_declined"

// InstantGateway approves every charge and refund synchronously.
type InstantGateway struct{}

func (InstantGateway) Charge(context.Context, *dompay.Payment) (bool, string, error) {
	return true, "", nil
}

func (InstantGateway) Refund(context.Context, *dompay.Payment, decimal.Decimal) error {
	return nil
}

// SimulatedGateway approves charges with a fixed probability, for load and demo runs.
type SimulatedGateway struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
}

func NewSimulatedGateway(successRate float64, seed int64) *SimulatedGateway {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &SimulatedGateway{
		random:      rand.New(rand.NewSource(seed)),
		successRate: successRate,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ *dompay.Payment) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}
	g.mu.Lock()
	roll := g.random.Float64()
	g.mu.Unlock()
	if roll < g.successRate {
		return true, "", nil
	}
	return false, paymentDeclinedReason, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, _ *dompay.Payment, _ decimal.Decimal) error {
	return ctx.Err()
}
