package market

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joefazee/marketcore/app/lmsr"
	"github.com/joefazee/marketcore/internal/logger"
	"github.com/joefazee/marketcore/internal/notify"
	"github.com/joefazee/marketcore/models"
)

type serviceFixture struct {
	svc       Service
	cfg       *Config
	recorder  *notify.Recorder
	authority uuid.UUID
	admin     uuid.UUID
	creator   uuid.UUID
	resolver  uuid.UUID
	trader    uuid.UUID
	now       time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		authority: uuid.New(),
		admin:     uuid.New(),
		creator:   uuid.New(),
		resolver:  uuid.New(),
		trader:    uuid.New(),
		recorder:  notify.NewRecorder(),
		now:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	f.cfg = GetDefaultConfig()
	f.cfg.VoteAuthorityID = f.authority.String()
	f.cfg.AdminID = f.admin.String()

	svc, err := NewService(f.cfg, lmsr.NewEngine(lmsr.GetDefaultConfig()), NewMemoryStore(), logger.NewNullLogger(), f.recorder)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *serviceFixture) tick(d time.Duration) time.Time {
	f.now = f.now.Add(d)
	return f.now
}

// createActive walks a fresh market to the ACTIVE state.
func (f *serviceFixture) createActive(t *testing.T) uuid.UUID {
	t.Helper()
	created, err := f.svc.CreateMarket(&CreateMarketRequest{
		Creator:       f.creator,
		TargetMaxLoss: decimal.NewFromInt(500),
	}, f.now)
	require.NoError(t, err)

	_, err = f.svc.ApproveMarket(f.authority, &ApproveMarketRequest{
		MarketID: created.ID, Likes: 8, Dislikes: 2,
	}, f.tick(time.Hour))
	require.NoError(t, err)

	_, err = f.svc.ActivateMarket(&ActivateMarketRequest{
		MarketID: created.ID, Liquidity: decimal.NewFromInt(1000),
	}, f.tick(time.Hour))
	require.NoError(t, err)
	return created.ID
}

// createResolving walks a market through trading into RESOLVING.
func (f *serviceFixture) createResolving(t *testing.T, outcome string) uuid.UUID {
	t.Helper()
	id := f.createActive(t)
	_, err := f.svc.BuyShares(&TradeRequest{
		MarketID: id, Trader: f.trader, Side: "yes",
		Amount: decimal.NewFromInt(100),
	}, f.tick(time.Hour))
	require.NoError(t, err)

	_, err = f.svc.ProposeResolution(&ProposeResolutionRequest{
		MarketID: id, Resolver: f.resolver, Outcome: outcome,
		EvidenceRef: "ipfs://evidence",
	}, f.tick(f.cfg.MinResolutionDelay))
	require.NoError(t, err)
	return id
}

func TestService_CreateMarket(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.svc.CreateMarket(&CreateMarketRequest{
		Creator:       f.creator,
		TargetMaxLoss: decimal.NewFromInt(500),
	}, f.now)
	require.NoError(t, err)

	assert.Equal(t, string(models.MarketStateProposed), resp.State)
	assert.Equal(t, f.creator, resp.Creator)
	// b = 500/ln2, so the advertised max loss comes back out at ~500.
	assert.InDelta(t, 500, resp.MaxLoss.InexactFloat64(), 0.001)
	assert.True(t, resp.PriceYes.Equal(decimal.RequireFromString("0.5")))

	t.Run("rejects a zero loss budget", func(t *testing.T) {
		_, err := f.svc.CreateMarket(&CreateMarketRequest{
			Creator:       f.creator,
			TargetMaxLoss: decimal.Zero,
		}, f.now)
		require.ErrorIs(t, err, models.ErrZeroAmount)
	})
}

func TestService_Lifecycle_Undisputed(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createResolving(t, "yes")

	resp, err := f.svc.FinalizeUndisputed(id, f.tick(f.cfg.DisputePeriod))
	require.NoError(t, err)
	assert.Equal(t, string(models.MarketStateFinalized), resp.State)
	assert.Equal(t, "yes", resp.FinalOutcome)
	assert.False(t, resp.WasDisputed)

	settlement, err := f.svc.Settlement(id)
	require.NoError(t, err)
	assert.Equal(t, "yes", settlement.FinalOutcome)
	assert.True(t, settlement.SharesYes.IsPositive())
}

func TestService_Lifecycle_DisputeFlipsOutcome(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createResolving(t, "yes")

	_, err := f.svc.InitiateDispute(&InitiateDisputeRequest{
		MarketID: id, Initiator: f.trader,
	}, f.tick(time.Hour))
	require.NoError(t, err)

	resp, err := f.svc.FinalizeDisputed(f.authority, &FinalizeDisputedRequest{
		MarketID: id, Agree: 12, Disagree: 8,
	}, f.tick(f.cfg.DisputePeriod))
	require.NoError(t, err)
	assert.Equal(t, "no", resp.FinalOutcome)
	assert.True(t, resp.WasDisputed)
}

func TestService_AuthorityChecks(t *testing.T) {
	f := newServiceFixture(t)
	intruder := uuid.New()

	created, err := f.svc.CreateMarket(&CreateMarketRequest{
		Creator:       f.creator,
		TargetMaxLoss: decimal.NewFromInt(500),
	}, f.now)
	require.NoError(t, err)

	_, err = f.svc.ApproveMarket(intruder, &ApproveMarketRequest{
		MarketID: created.ID, Likes: 10, Dislikes: 0,
	}, f.now)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.FinalizeDisputed(intruder, &FinalizeDisputedRequest{
		MarketID: created.ID, Agree: 20, Disagree: 0,
	}, f.now)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	require.ErrorIs(t, f.svc.Pause(intruder), models.ErrUnauthorized)
	require.ErrorIs(t, f.svc.Resume(intruder), models.ErrUnauthorized)
}

func TestService_PauseGating(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	require.NoError(t, f.svc.Pause(f.admin))

	_, err := f.svc.BuyShares(&TradeRequest{
		MarketID: id, Trader: f.trader, Side: "yes",
		Amount: decimal.NewFromInt(10),
	}, f.tick(time.Hour))
	require.ErrorIs(t, err, models.ErrProtocolPaused)

	_, err = f.svc.CreateMarket(&CreateMarketRequest{
		Creator:       f.creator,
		TargetMaxLoss: decimal.NewFromInt(500),
	}, f.now)
	require.ErrorIs(t, err, models.ErrProtocolPaused)

	_, err = f.svc.ProposeResolution(&ProposeResolutionRequest{
		MarketID: id, Resolver: f.resolver, Outcome: "yes",
	}, f.tick(f.cfg.MinResolutionDelay))
	require.ErrorIs(t, err, models.ErrProtocolPaused)

	require.NoError(t, f.svc.Resume(f.admin))
	_, err = f.svc.BuyShares(&TradeRequest{
		MarketID: id, Trader: f.trader, Side: "yes",
		Amount: decimal.NewFromInt(10),
	}, f.tick(time.Hour))
	require.NoError(t, err)
}

func TestService_BuyShares(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	t.Run("charges fees on top of the engine cost", func(t *testing.T) {
		resp, err := f.svc.BuyShares(&TradeRequest{
			MarketID: id, Trader: f.trader, Side: "yes",
			Amount: decimal.NewFromInt(100),
		}, f.tick(time.Hour))
		require.NoError(t, err)

		assert.True(t, resp.Shares.IsPositive())
		// 10% combined fee on a 100 spend.
		assert.True(t, resp.Fee.Equal(decimal.NewFromInt(10)), "fee was %s", resp.Fee)
		assert.True(t, resp.Cost.LessThanOrEqual(decimal.NewFromInt(100)))
		assert.True(t, resp.PriceYesAfter.GreaterThan(decimal.RequireFromString("0.5")))

		snapshot, err := f.svc.GetMarket(id)
		require.NoError(t, err)
		assert.True(t, snapshot.SharesYes.Equal(resp.Shares))
		assert.True(t, snapshot.TotalVolume.IsPositive())
	})

	t.Run("slippage bound", func(t *testing.T) {
		_, err := f.svc.BuyShares(&TradeRequest{
			MarketID: id, Trader: f.trader, Side: "yes",
			Amount:  decimal.NewFromInt(100),
			MaxCost: decimal.NewFromInt(50),
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrSlippageExceeded)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := f.svc.BuyShares(&TradeRequest{
			MarketID: id, Trader: f.trader, Side: "yes",
			Amount: decimal.Zero,
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrZeroAmount)
	})

	t.Run("rejects a bad side", func(t *testing.T) {
		_, err := f.svc.BuyShares(&TradeRequest{
			MarketID: id, Trader: f.trader, Side: "invalid",
			Amount: decimal.NewFromInt(10),
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrInvalidOutcome)
	})

	t.Run("unknown market", func(t *testing.T) {
		_, err := f.svc.BuyShares(&TradeRequest{
			MarketID: uuid.New(), Trader: f.trader, Side: "yes",
			Amount: decimal.NewFromInt(10),
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrMarketNotFound)
	})
}

func TestService_SellShares(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	bought, err := f.svc.BuyShares(&TradeRequest{
		MarketID: id, Trader: f.trader, Side: "no",
		Amount: decimal.NewFromInt(200),
	}, f.tick(time.Hour))
	require.NoError(t, err)

	t.Run("partial sell pays out", func(t *testing.T) {
		resp, err := f.svc.SellShares(&SellRequest{
			MarketID: id, Trader: f.trader, Side: "no",
			Shares: decimal.NewFromInt(50),
		}, f.tick(time.Hour))
		require.NoError(t, err)
		assert.True(t, resp.Proceeds.IsPositive())
		assert.True(t, resp.Fee.IsPositive())

		snapshot, err := f.svc.GetMarket(id)
		require.NoError(t, err)
		assert.True(t, snapshot.SharesNo.Equal(bought.Shares.Sub(decimal.NewFromInt(50))))
	})

	t.Run("overselling leaves the market untouched", func(t *testing.T) {
		before, err := f.svc.GetMarket(id)
		require.NoError(t, err)

		_, err = f.svc.SellShares(&SellRequest{
			MarketID: id, Trader: f.trader, Side: "no",
			Shares: decimal.NewFromInt(1_000_000),
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrInsufficientShares)

		after, err := f.svc.GetMarket(id)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("minimum proceeds bound", func(t *testing.T) {
		_, err := f.svc.SellShares(&SellRequest{
			MarketID: id, Trader: f.trader, Side: "no",
			Shares:      decimal.NewFromInt(10),
			MinProceeds: decimal.NewFromInt(1_000_000),
		}, f.tick(time.Hour))
		require.ErrorIs(t, err, models.ErrSlippageExceeded)
	})
}

func TestService_Quote_DoesNotMutate(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	before, err := f.svc.GetMarket(id)
	require.NoError(t, err)

	quote, err := f.svc.Quote(&TradeRequest{
		MarketID: id, Trader: f.trader, Side: "yes",
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.True(t, quote.Shares.IsPositive())

	after, err := f.svc.GetMarket(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_FailedTransitionMutatesNothing(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	before, err := f.svc.GetMarket(id)
	require.NoError(t, err)

	// Too early to resolve.
	_, err = f.svc.ProposeResolution(&ProposeResolutionRequest{
		MarketID: id, Resolver: f.resolver, Outcome: "yes",
	}, f.tick(time.Minute))
	require.ErrorIs(t, err, models.ErrResolutionTooEarly)

	after, err := f.svc.GetMarket(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_SettlementRequiresFinalized(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createActive(t)

	_, err := f.svc.Settlement(id)
	require.ErrorIs(t, err, models.ErrMarketNotFinalized)
}

func TestService_Notifications(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createResolving(t, "yes")
	_, err := f.svc.FinalizeUndisputed(id, f.tick(f.cfg.DisputePeriod))
	require.NoError(t, err)

	var types []notify.EventType
	for _, ev := range f.recorder.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []notify.EventType{
		notify.EventMarketCreated,
		notify.EventMarketApproved,
		notify.EventMarketActivated,
		notify.EventSharesBought,
		notify.EventResolutionMoved,
		notify.EventMarketFinalized,
	}, types)

	final := f.recorder.Events()[len(f.recorder.Events())-1]
	assert.Equal(t, id, final.MarketID)
	assert.Equal(t, string(models.MarketStateResolving), final.FromState)
	assert.Equal(t, string(models.MarketStateFinalized), final.ToState)
	assert.Equal(t, "yes", final.Outcome)
}
