package market

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/app/lmsr"
	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/internal/logger"
	"github.com/joefazee/marketcore/internal/notify"
	"github.com/joefazee/marketcore/models"
)

type service struct {
	config   *Config
	engine   lmsr.Engine
	store    Store
	log      logger.Logger
	notifier notify.Notifier

	mu     sync.Mutex
	paused bool
}

// NewService creates the market service. The configuration must carry
// valid authority identities.
func NewService(config *Config, engine lmsr.Engine, store Store, log logger.Logger, notifier notify.Notifier) (Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("market config: %w", err)
	}
	return &service{
		config:   config,
		engine:   engine,
		store:    store,
		log:      log,
		notifier: notifier,
	}, nil
}

func (s *service) CreateMarket(req *CreateMarketRequest, now time.Time) (*MarketResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil, models.ErrProtocolPaused
	}

	targetLoss, err := amountFromDecimal(req.TargetMaxLoss)
	if err != nil {
		return nil, err
	}
	b, err := s.engine.BForMaxLoss(targetLoss)
	if err != nil {
		return nil, err
	}

	m := models.NewMarket(uuid.New(), req.Creator, b, now)
	s.store.Put(m)

	s.log.Info("market created", logger.Fields{
		"market_id": m.ID.String(),
		"b":         uint64(m.B),
	})
	s.notifier.Notify(notify.Event{
		Type:     notify.EventMarketCreated,
		MarketID: m.ID,
		Actor:    req.Creator,
		ToState:  string(m.State),
		At:       now,
	})
	return s.snapshot(m)
}

func (s *service) ApproveMarket(caller uuid.UUID, req *ApproveMarketRequest, now time.Time) (*MarketResponse, error) {
	if caller != s.config.VoteAuthority() {
		return nil, models.ErrUnauthorized
	}
	return s.transition(req.MarketID, notify.EventMarketApproved, caller, now, func(m *models.Market) error {
		return m.ApproveProposal(req.Likes, req.Dislikes, s.config.ApprovalThresholdBps, s.config.MinProposalVotes, now)
	})
}

func (s *service) ActivateMarket(req *ActivateMarketRequest, now time.Time) (*MarketResponse, error) {
	liquidity, err := amountFromDecimal(req.Liquidity)
	if err != nil {
		return nil, err
	}
	return s.transition(req.MarketID, notify.EventMarketActivated, uuid.Nil, now, func(m *models.Market) error {
		return m.Activate(liquidity, s.config.MinInitialLiquidity, now)
	})
}

func (s *service) BuyShares(req *TradeRequest, now time.Time) (*TradeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil, models.ErrProtocolPaused
	}

	m, err := s.store.Get(req.MarketID)
	if err != nil {
		return nil, err
	}
	if !m.IsTradable() {
		return nil, models.ErrMarketNotActive
	}

	side, amount, maxGross, err := s.parseTrade(req)
	if err != nil {
		return nil, err
	}
	if amount > maxGross {
		return nil, models.ErrSlippageExceeded
	}

	fee := s.config.SplitFees(amount)
	net := amount - fee.Total
	if net == 0 {
		return nil, models.ErrZeroAmount
	}

	netCost, shares, err := s.engine.Quote(m.SharesYes, m.SharesNo, m.B, side, net, net)
	if err != nil {
		return nil, err
	}
	if shares == 0 {
		return nil, models.ErrZeroAmount
	}

	next := *m
	if err := next.RecordBuy(side, shares, netCost, fee.Protocol, fee.Resolver, fee.LP); err != nil {
		return nil, err
	}
	s.store.Put(&next)

	s.log.Info("shares bought", logger.Fields{
		"market_id": next.ID.String(),
		"trader":    req.Trader.String(),
		"side":      string(side),
		"shares":    uint64(shares),
		"cost":      uint64(netCost),
		"fee":       uint64(fee.Total),
	})
	s.notifier.Notify(notify.Event{
		Type:     notify.EventSharesBought,
		MarketID: next.ID,
		Actor:    req.Trader,
		Shares:   uint64(shares),
		Amount:   uint64(netCost + fee.Total),
		Outcome:  string(side),
		At:       now,
	})
	return s.tradeResponse(&next, side, shares, netCost+fee.Total, 0, fee.Total)
}

func (s *service) SellShares(req *SellRequest, now time.Time) (*TradeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil, models.ErrProtocolPaused
	}

	m, err := s.store.Get(req.MarketID)
	if err != nil {
		return nil, err
	}
	if !m.IsTradable() {
		return nil, models.ErrMarketNotActive
	}

	side, err := parseOutcome(req.Side, false)
	if err != nil {
		return nil, err
	}
	shares, err := amountFromDecimal(req.Shares)
	if err != nil {
		return nil, err
	}
	minProceeds, err := fixedpoint.FromDecimal(req.MinProceeds)
	if err != nil {
		return nil, err
	}

	gross, err := s.engine.SellProceeds(m.SharesYes, m.SharesNo, m.B, side, shares, 0)
	if err != nil {
		return nil, err
	}
	fee := s.config.SplitFees(gross)
	net := gross - fee.Total
	if net < minProceeds {
		return nil, models.ErrSlippageExceeded
	}

	next := *m
	if err := next.RecordSell(side, shares, gross, fee.Protocol, fee.Resolver, fee.LP); err != nil {
		return nil, err
	}
	s.store.Put(&next)

	s.log.Info("shares sold", logger.Fields{
		"market_id": next.ID.String(),
		"trader":    req.Trader.String(),
		"side":      string(side),
		"shares":    uint64(shares),
		"proceeds":  uint64(net),
		"fee":       uint64(fee.Total),
	})
	s.notifier.Notify(notify.Event{
		Type:     notify.EventSharesSold,
		MarketID: next.ID,
		Actor:    req.Trader,
		Shares:   uint64(shares),
		Amount:   uint64(net),
		Outcome:  string(side),
		At:       now,
	})
	return s.tradeResponse(&next, side, shares, 0, net, fee.Total)
}

func (s *service) Quote(req *TradeRequest) (*TradeResponse, error) {
	m, err := s.store.Get(req.MarketID)
	if err != nil {
		return nil, err
	}
	if !m.IsTradable() {
		return nil, models.ErrMarketNotActive
	}

	side, amount, _, err := s.parseTrade(req)
	if err != nil {
		return nil, err
	}
	fee := s.config.SplitFees(amount)
	net := amount - fee.Total
	if net == 0 {
		return nil, models.ErrZeroAmount
	}
	netCost, shares, err := s.engine.Quote(m.SharesYes, m.SharesNo, m.B, side, net, net)
	if err != nil {
		return nil, err
	}
	return s.tradeResponse(m, side, shares, netCost+fee.Total, 0, fee.Total)
}

func (s *service) ProposeResolution(req *ProposeResolutionRequest, now time.Time) (*MarketResponse, error) {
	if req.Resolver == uuid.Nil {
		return nil, models.ErrUnauthorized
	}
	outcome, err := parseOutcome(req.Outcome, true)
	if err != nil {
		return nil, err
	}
	return s.transition(req.MarketID, notify.EventResolutionMoved, req.Resolver, now, func(m *models.Market) error {
		return m.ProposeResolution(req.Resolver, outcome, req.EvidenceRef, s.config.MinResolutionDelay, now)
	})
}

func (s *service) InitiateDispute(req *InitiateDisputeRequest, now time.Time) (*MarketResponse, error) {
	return s.transition(req.MarketID, notify.EventDisputeOpened, req.Initiator, now, func(m *models.Market) error {
		return m.InitiateDispute(req.Initiator, s.config.DisputePeriod, now)
	})
}

func (s *service) FinalizeUndisputed(marketID uuid.UUID, now time.Time) (*MarketResponse, error) {
	return s.transition(marketID, notify.EventMarketFinalized, uuid.Nil, now, func(m *models.Market) error {
		return m.FinalizeUndisputed(s.config.DisputePeriod, now)
	})
}

func (s *service) FinalizeDisputed(caller uuid.UUID, req *FinalizeDisputedRequest, now time.Time) (*MarketResponse, error) {
	if caller != s.config.VoteAuthority() {
		return nil, models.ErrUnauthorized
	}
	return s.transition(req.MarketID, notify.EventMarketFinalized, caller, now, func(m *models.Market) error {
		return m.FinalizeDisputed(req.Agree, req.Disagree, s.config.DisputeThresholdBps, now)
	})
}

func (s *service) GetMarket(marketID uuid.UUID) (*MarketResponse, error) {
	m, err := s.store.Get(marketID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(m)
}

func (s *service) Settlement(marketID uuid.UUID) (*SettlementResponse, error) {
	m, err := s.store.Get(marketID)
	if err != nil {
		return nil, err
	}
	info, err := m.Settlement()
	if err != nil {
		return nil, err
	}
	return &SettlementResponse{
		MarketID:         info.MarketID,
		FinalOutcome:     string(info.FinalOutcome),
		SharesYes:        info.SharesYes.Decimal(),
		SharesNo:         info.SharesNo.Decimal(),
		InitialLiquidity: info.InitialLiquidity.Decimal(),
		CurrentLiquidity: info.CurrentLiquidity.Decimal(),
		FinalizedAt:      info.FinalizedAt,
	}, nil
}

func (s *service) Pause(caller uuid.UUID) error {
	if caller != s.config.Admin() {
		return models.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.log.Info("protocol paused", logger.Fields{"admin": caller.String()})
	s.notifier.Notify(notify.Event{Type: notify.EventProtocolPaused, Actor: caller})
	return nil
}

func (s *service) Resume(caller uuid.UUID) error {
	if caller != s.config.Admin() {
		return models.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.log.Info("protocol resumed", logger.Fields{"admin": caller.String()})
	s.notifier.Notify(notify.Event{Type: notify.EventProtocolResumed, Actor: caller})
	return nil
}

// transition runs a lifecycle step on a copy of the aggregate and
// commits only on success.
func (s *service) transition(marketID uuid.UUID, event notify.EventType, actor uuid.UUID, now time.Time, apply func(*models.Market) error) (*MarketResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil, models.ErrProtocolPaused
	}

	m, err := s.store.Get(marketID)
	if err != nil {
		return nil, err
	}

	next := *m
	from := next.State
	if err := apply(&next); err != nil {
		return nil, err
	}
	s.store.Put(&next)

	s.log.Info("market transitioned", logger.Fields{
		"market_id":  next.ID.String(),
		"from_state": string(from),
		"to_state":   string(next.State),
	})
	s.notifier.Notify(notify.Event{
		Type:      event,
		MarketID:  next.ID,
		Actor:     actor,
		FromState: string(from),
		ToState:   string(next.State),
		Outcome:   outcomeString(next.FinalOutcome),
		At:        now,
	})
	return s.snapshot(&next)
}

func (s *service) parseTrade(req *TradeRequest) (models.Outcome, fixedpoint.Value, fixedpoint.Value, error) {
	side, err := parseOutcome(req.Side, false)
	if err != nil {
		return "", 0, 0, err
	}
	amount, err := amountFromDecimal(req.Amount)
	if err != nil {
		return "", 0, 0, err
	}
	maxGross := amount
	if req.MaxCost.Sign() > 0 {
		maxGross, err = fixedpoint.FromDecimal(req.MaxCost)
		if err != nil {
			return "", 0, 0, err
		}
	}
	return side, amount, maxGross, nil
}

func (s *service) snapshot(m *models.Market) (*MarketResponse, error) {
	priceYes, err := s.engine.PriceYes(m.SharesYes, m.SharesNo, m.B)
	if err != nil {
		return nil, err
	}
	priceNo, err := s.engine.PriceNo(m.SharesYes, m.SharesNo, m.B)
	if err != nil {
		return nil, err
	}
	return &MarketResponse{
		ID:               m.ID,
		Creator:          m.Creator,
		State:            string(m.State),
		B:                m.B.Decimal(),
		MaxLoss:          s.engine.MaxLoss(m.B).Decimal(),
		SharesYes:        m.SharesYes.Decimal(),
		SharesNo:         m.SharesNo.Decimal(),
		PriceYes:         priceYes.Decimal(),
		PriceNo:          priceNo.Decimal(),
		CurrentLiquidity: m.CurrentLiquidity.Decimal(),
		TotalVolume:      m.TotalVolume.Decimal(),
		ProposedOutcome:  outcomeString(m.ProposedOutcome),
		FinalOutcome:     outcomeString(m.FinalOutcome),
		WasDisputed:      m.WasDisputed,
		CreatedAt:        m.CreatedAt,
		FinalizedAt:      m.FinalizedAt,
	}, nil
}

func (s *service) tradeResponse(m *models.Market, side models.Outcome, shares, cost, proceeds, fee fixedpoint.Value) (*TradeResponse, error) {
	priceYes, err := s.engine.PriceYes(m.SharesYes, m.SharesNo, m.B)
	if err != nil {
		return nil, err
	}
	priceNo, err := s.engine.PriceNo(m.SharesYes, m.SharesNo, m.B)
	if err != nil {
		return nil, err
	}
	return &TradeResponse{
		MarketID:      m.ID,
		Side:          string(side),
		Shares:        shares.Decimal(),
		Cost:          cost.Decimal(),
		Proceeds:      proceeds.Decimal(),
		Fee:           fee.Decimal(),
		PriceYesAfter: priceYes.Decimal(),
		PriceNoAfter:  priceNo.Decimal(),
	}, nil
}
