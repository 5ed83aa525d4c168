package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// FundsMover is the currency-transfer collaborator. A transfer either fully
// succeeds and moves funds, or fails with no effect; the vault only consumes
// that success signal.
type FundsMover interface {
	Transfer(ctx context.Context, account string, amount decimal.Decimal, reference string) error
}
