// Command simulate runs a full market lifecycle against the in-memory
// service: proposal, approval, activation, a trading session, a
// disputed resolution and settlement. Inputs are fixed, so repeated
// runs produce identical quantities.
package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joefazee/marketcore/app/lmsr"
	"github.com/joefazee/marketcore/app/market"
	"github.com/joefazee/marketcore/internal/logger"
	"github.com/joefazee/marketcore/internal/notify"
)

var (
	authorityID = uuid.MustParse("6d3f2f60-0000-4000-8000-000000000001")
	adminID     = uuid.MustParse("6d3f2f60-0000-4000-8000-000000000002")
	creatorID   = uuid.MustParse("6d3f2f60-0000-4000-8000-000000000003")
	resolverID  = uuid.MustParse("6d3f2f60-0000-4000-8000-000000000004")
	traderID    = uuid.MustParse("6d3f2f60-0000-4000-8000-000000000005")
)

func main() {
	log := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{"service": "marketcore-simulate"})

	cfg := market.GetDefaultConfig()
	cfg.VoteAuthorityID = authorityID.String()
	cfg.AdminID = adminID.String()

	svc, err := market.NewService(cfg, lmsr.NewEngine(lmsr.GetDefaultConfig()), market.NewMemoryStore(), log, notify.NewLogNotifier(log))
	if err != nil {
		log.Fatal(err, nil)
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreateMarket(&market.CreateMarketRequest{
		Creator:       creatorID,
		TargetMaxLoss: decimal.NewFromInt(500),
	}, now)
	if err != nil {
		log.Fatal(err, nil)
	}
	id := created.ID

	now = now.Add(time.Hour)
	if _, err = svc.ApproveMarket(authorityID, &market.ApproveMarketRequest{
		MarketID: id, Likes: 8, Dislikes: 2,
	}, now); err != nil {
		log.Fatal(err, nil)
	}

	now = now.Add(time.Hour)
	if _, err = svc.ActivateMarket(&market.ActivateMarketRequest{
		MarketID: id, Liquidity: decimal.NewFromInt(1000),
	}, now); err != nil {
		log.Fatal(err, nil)
	}
	activatedAt := now

	// A short trading session: three buys on YES, one on NO, then a
	// partial YES sell.
	for _, amount := range []int64{50, 120, 80} {
		now = now.Add(time.Hour)
		if _, err = svc.BuyShares(&market.TradeRequest{
			MarketID: id, Trader: traderID, Side: "yes",
			Amount: decimal.NewFromInt(amount),
		}, now); err != nil {
			log.Fatal(err, nil)
		}
	}
	now = now.Add(time.Hour)
	if _, err = svc.BuyShares(&market.TradeRequest{
		MarketID: id, Trader: traderID, Side: "no",
		Amount: decimal.NewFromInt(60),
	}, now); err != nil {
		log.Fatal(err, nil)
	}
	now = now.Add(time.Hour)
	if _, err = svc.SellShares(&market.SellRequest{
		MarketID: id, Trader: traderID, Side: "yes",
		Shares: decimal.NewFromInt(30),
	}, now); err != nil {
		log.Fatal(err, nil)
	}

	now = activatedAt.Add(cfg.MinResolutionDelay + time.Hour)
	if _, err = svc.ProposeResolution(&market.ProposeResolutionRequest{
		MarketID: id, Resolver: resolverID, Outcome: "yes",
		EvidenceRef: "ipfs://sim-evidence",
	}, now); err != nil {
		log.Fatal(err, nil)
	}

	now = now.Add(time.Hour)
	if _, err = svc.InitiateDispute(&market.InitiateDisputeRequest{
		MarketID: id, Initiator: traderID,
	}, now); err != nil {
		log.Fatal(err, nil)
	}

	now = now.Add(cfg.DisputePeriod)
	final, err := svc.FinalizeDisputed(authorityID, &market.FinalizeDisputedRequest{
		MarketID: id, Agree: 13, Disagree: 7,
	}, now)
	if err != nil {
		log.Fatal(err, nil)
	}

	settlement, err := svc.Settlement(id)
	if err != nil {
		log.Fatal(err, nil)
	}

	log.Info("simulation finished", logger.Fields{
		"market_id":     id.String(),
		"final_outcome": final.FinalOutcome,
		"was_disputed":  final.WasDisputed,
		"shares_yes":    settlement.SharesYes.String(),
		"shares_no":     settlement.SharesNo.String(),
		"liquidity":     settlement.CurrentLiquidity.String(),
		"volume":        final.TotalVolume.String(),
	})
}
