package market

import (
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/models"
)

// Store holds market aggregates. Implementations must return the
// stored aggregate itself so reads see committed writes; the service
// is responsible for copy-on-write semantics.
type Store interface {
	Get(id uuid.UUID) (*models.Market, error)
	Put(m *models.Market)
	List() []*models.Market
}

// Service is the operation surface over market lifecycles and trading.
// Every method takes the caller's identity where a capability applies
// and an explicit `now`; the service keeps no clock of its own. A
// failed call leaves the aggregate exactly as it was.
type Service interface {
	// CreateMarket registers a new market proposal. The liquidity
	// parameter b is derived from the creator's target maximum loss.
	CreateMarket(req *CreateMarketRequest, now time.Time) (*MarketResponse, error)

	// ApproveMarket applies aggregated proposal vote tallies.
	// Restricted to the vote authority.
	ApproveMarket(caller uuid.UUID, req *ApproveMarketRequest, now time.Time) (*MarketResponse, error)

	// ActivateMarket funds an approved market and opens trading.
	ActivateMarket(req *ActivateMarketRequest, now time.Time) (*MarketResponse, error)

	// BuyShares spends req.Amount on shares of one side, fees included.
	BuyShares(req *TradeRequest, now time.Time) (*TradeResponse, error)

	// SellShares sells shares of one side back to the market maker.
	SellShares(req *SellRequest, now time.Time) (*TradeResponse, error)

	// Quote prices a prospective buy without touching any state.
	Quote(req *TradeRequest) (*TradeResponse, error)

	// ProposeResolution submits a proposed outcome with evidence and
	// opens the dispute window.
	ProposeResolution(req *ProposeResolutionRequest, now time.Time) (*MarketResponse, error)

	// InitiateDispute challenges a proposed resolution.
	InitiateDispute(req *InitiateDisputeRequest, now time.Time) (*MarketResponse, error)

	// FinalizeUndisputed finalizes a resolving market after its
	// dispute window passed quietly.
	FinalizeUndisputed(marketID uuid.UUID, now time.Time) (*MarketResponse, error)

	// FinalizeDisputed applies aggregated dispute vote tallies and
	// finalizes. Restricted to the vote authority.
	FinalizeDisputed(caller uuid.UUID, req *FinalizeDisputedRequest, now time.Time) (*MarketResponse, error)

	// GetMarket returns a snapshot of one market with current prices.
	GetMarket(marketID uuid.UUID) (*MarketResponse, error)

	// Settlement returns the payout view of a finalized market.
	Settlement(marketID uuid.UUID) (*SettlementResponse, error)

	// Pause and Resume toggle the emergency stop. Admin only.
	Pause(caller uuid.UUID) error
	Resume(caller uuid.UUID) error
}
