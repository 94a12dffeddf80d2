package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

// Requests and responses carry external amounts as decimals; the
// service converts to fixed-point at this boundary and nowhere else.

type CreateMarketRequest struct {
	Creator uuid.UUID `json:"creator"`

	// TargetMaxLoss is the worst-case subsidy the creator is willing
	// to put at risk. The liquidity parameter b is derived from it.
	TargetMaxLoss decimal.Decimal `json:"target_max_loss"`
}

type ApproveMarketRequest struct {
	MarketID uuid.UUID `json:"market_id"`
	Likes    int       `json:"likes"`
	Dislikes int       `json:"dislikes"`
}

type ActivateMarketRequest struct {
	MarketID  uuid.UUID       `json:"market_id"`
	Liquidity decimal.Decimal `json:"liquidity"`
}

type TradeRequest struct {
	MarketID uuid.UUID `json:"market_id"`
	Trader   uuid.UUID `json:"trader"`
	Side     string    `json:"side"`

	// Amount is the gross spend, fees included.
	Amount decimal.Decimal `json:"amount"`

	// MaxCost bounds the gross spend accepted after sizing. Zero
	// means Amount itself is the bound.
	MaxCost decimal.Decimal `json:"max_cost"`
}

type SellRequest struct {
	MarketID uuid.UUID       `json:"market_id"`
	Trader   uuid.UUID       `json:"trader"`
	Side     string          `json:"side"`
	Shares   decimal.Decimal `json:"shares"`

	// MinProceeds bounds the net payout accepted after fees.
	MinProceeds decimal.Decimal `json:"min_proceeds"`
}

type ProposeResolutionRequest struct {
	MarketID    uuid.UUID `json:"market_id"`
	Resolver    uuid.UUID `json:"resolver"`
	Outcome     string    `json:"outcome"`
	EvidenceRef string    `json:"evidence_ref"`
}

type InitiateDisputeRequest struct {
	MarketID  uuid.UUID `json:"market_id"`
	Initiator uuid.UUID `json:"initiator"`
}

type FinalizeDisputedRequest struct {
	MarketID uuid.UUID `json:"market_id"`
	Agree    int       `json:"agree"`
	Disagree int       `json:"disagree"`
}

type MarketResponse struct {
	ID               uuid.UUID       `json:"id"`
	Creator          uuid.UUID       `json:"creator"`
	State            string          `json:"state"`
	B                decimal.Decimal `json:"b"`
	MaxLoss          decimal.Decimal `json:"max_loss"`
	SharesYes        decimal.Decimal `json:"shares_yes"`
	SharesNo         decimal.Decimal `json:"shares_no"`
	PriceYes         decimal.Decimal `json:"price_yes"`
	PriceNo          decimal.Decimal `json:"price_no"`
	CurrentLiquidity decimal.Decimal `json:"current_liquidity"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
	ProposedOutcome  string          `json:"proposed_outcome,omitempty"`
	FinalOutcome     string          `json:"final_outcome,omitempty"`
	WasDisputed      bool            `json:"was_disputed"`
	CreatedAt        time.Time       `json:"created_at"`
	FinalizedAt      time.Time       `json:"finalized_at,omitempty"`
}

type TradeResponse struct {
	MarketID      uuid.UUID       `json:"market_id"`
	Side          string          `json:"side"`
	Shares        decimal.Decimal `json:"shares"`
	Cost          decimal.Decimal `json:"cost"`
	Proceeds      decimal.Decimal `json:"proceeds,omitempty"`
	Fee           decimal.Decimal `json:"fee"`
	PriceYesAfter decimal.Decimal `json:"price_yes_after"`
	PriceNoAfter  decimal.Decimal `json:"price_no_after"`
}

type SettlementResponse struct {
	MarketID         uuid.UUID       `json:"market_id"`
	FinalOutcome     string          `json:"final_outcome"`
	SharesYes        decimal.Decimal `json:"shares_yes"`
	SharesNo         decimal.Decimal `json:"shares_no"`
	InitialLiquidity decimal.Decimal `json:"initial_liquidity"`
	CurrentLiquidity decimal.Decimal `json:"current_liquidity"`
	FinalizedAt      time.Time       `json:"finalized_at"`
}

// parseOutcome maps a request side to the model outcome. Trading sides
// are yes/no only; invalid is a resolution outcome, never a side.
func parseOutcome(s string, allowInvalid bool) (models.Outcome, error) {
	o := models.Outcome(s)
	if !o.Valid() {
		return "", models.ErrInvalidOutcome
	}
	if o == models.OutcomeInvalid && !allowInvalid {
		return "", models.ErrInvalidOutcome
	}
	return o, nil
}

// amountFromDecimal converts an external amount, rejecting zero and
// negative values.
func amountFromDecimal(d decimal.Decimal) (fixedpoint.Value, error) {
	v, err := fixedpoint.FromDecimal(d)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, models.ErrZeroAmount
	}
	return v, nil
}

func outcomeString(o *models.Outcome) string {
	if o == nil {
		return ""
	}
	return string(*o)
}
