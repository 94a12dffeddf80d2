package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/internal/fixedpoint"
)

// MarketState represents the current lifecycle state of a market.
//
// The lifecycle is a six-state machine:
//
//	PROPOSED -> APPROVED -> ACTIVE -> RESOLVING -> DISPUTED -> FINALIZED
//	                                             -> FINALIZED
//
// FINALIZED is terminal.
type MarketState string

const (
	MarketStateProposed  MarketState = "proposed"
	MarketStateApproved  MarketState = "approved"
	MarketStateActive    MarketState = "active"
	MarketStateResolving MarketState = "resolving"
	MarketStateDisputed  MarketState = "disputed"
	MarketStateFinalized MarketState = "finalized"
)

// Outcome is a tri-state market resolution.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeInvalid Outcome = "invalid"
)

// Valid reports whether o is one of the three defined outcomes.
func (o Outcome) Valid() bool {
	return o == OutcomeYes || o == OutcomeNo || o == OutcomeInvalid
}

// Complement returns the opposite outcome. A successful dispute flips
// the proposed outcome to its complement. INVALID has no opposite and
// maps to itself.
func (o Outcome) Complement() Outcome {
	switch o {
	case OutcomeYes:
		return OutcomeNo
	case OutcomeNo:
		return OutcomeYes
	default:
		return OutcomeInvalid
	}
}

// validTransitions is the exhaustive legal transition table. Any pair
// not listed here fails with ErrInvalidStateTransition.
var validTransitions = map[MarketState][]MarketState{
	MarketStateProposed:  {MarketStateApproved},
	MarketStateApproved:  {MarketStateActive},
	MarketStateActive:    {MarketStateResolving},
	MarketStateResolving: {MarketStateDisputed, MarketStateFinalized},
	MarketStateDisputed:  {MarketStateFinalized},
	MarketStateFinalized: {},
}

// Market is the aggregate tying lifecycle state, LMSR quantities and
// resolution data together. All quantities are fixed-point with 9
// decimals. The aggregate carries no locking: the host serializes
// access, and every operation either commits fully or mutates nothing.
type Market struct {
	ID      uuid.UUID
	Creator uuid.UUID
	State   MarketState

	// LMSR parameters and share quantities
	B                fixedpoint.Value
	InitialLiquidity fixedpoint.Value
	CurrentLiquidity fixedpoint.Value
	SharesYes        fixedpoint.Value
	SharesNo         fixedpoint.Value
	TotalVolume      fixedpoint.Value

	// Lifecycle timestamps, each written exactly once on state entry
	CreatedAt            time.Time
	ApprovedAt           time.Time
	ActivatedAt          time.Time
	ResolutionProposedAt time.Time
	DisputeInitiatedAt   time.Time
	FinalizedAt          time.Time

	// Resolution data
	Resolver        uuid.UUID
	ProposedOutcome *Outcome
	FinalOutcome    *Outcome
	EvidenceRef     string

	// Dispute tracking
	DisputeInitiator uuid.UUID
	WasDisputed      bool

	// Aggregated vote tallies, supplied by the vote authority.
	// These are deduplicated counts, never individual ballots.
	ProposalLikes    int
	ProposalDislikes int
	DisputeAgree     int
	DisputeDisagree  int

	// Fee accrual (trading fees retained by the aggregate)
	AccruedProtocolFees fixedpoint.Value
	AccruedResolverFees fixedpoint.Value
	AccruedLPFees       fixedpoint.Value
}

// NewMarket creates a market in the PROPOSED state.
func NewMarket(id, creator uuid.UUID, b fixedpoint.Value, createdAt time.Time) *Market {
	return &Market{
		ID:        id,
		Creator:   creator,
		State:     MarketStateProposed,
		B:         b,
		CreatedAt: createdAt,
	}
}

// CanTransitionTo reports whether moving to next is legal from the
// current state.
func (m *Market) CanTransitionTo(next MarketState) bool {
	for _, s := range validTransitions[m.State] {
		if s == next {
			return true
		}
	}
	return false
}

// transitionTo moves the market to next and stamps the entering
// state's timestamp. This is the only place those timestamps are
// ever written.
func (m *Market) transitionTo(next MarketState, at time.Time) error {
	if !m.CanTransitionTo(next) {
		return ErrInvalidStateTransition
	}
	switch next {
	case MarketStateApproved:
		m.ApprovedAt = at
	case MarketStateActive:
		m.ActivatedAt = at
	case MarketStateResolving:
		m.ResolutionProposedAt = at
	case MarketStateDisputed:
		m.DisputeInitiatedAt = at
	case MarketStateFinalized:
		m.FinalizedAt = at
	}
	m.State = next
	return nil
}

// IsTradable reports whether buy/sell operations are legal right now.
func (m *Market) IsTradable() bool {
	return m.State == MarketStateActive
}

// ratioBps returns part/total in basis points, 0 when total is zero.
func ratioBps(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 10000 / total
}

// ApproveProposal records the aggregated proposal tallies and
// transitions PROPOSED -> APPROVED when the approval rate meets
// thresholdBps and the turnout meets minVotes.
func (m *Market) ApproveProposal(likes, dislikes, thresholdBps, minVotes int, at time.Time) error {
	if !m.CanTransitionTo(MarketStateApproved) {
		return ErrInvalidStateTransition
	}
	total := likes + dislikes
	if total < minVotes || ratioBps(likes, total) < thresholdBps {
		return ErrInsufficientApprovalVotes
	}
	m.ProposalLikes = likes
	m.ProposalDislikes = dislikes
	return m.transitionTo(MarketStateApproved, at)
}

// Activate funds the market and transitions APPROVED -> ACTIVE.
// Share quantities start at zero, so the opening price is 50/50.
func (m *Market) Activate(liquidity, minLiquidity fixedpoint.Value, at time.Time) error {
	if !m.CanTransitionTo(MarketStateActive) {
		return ErrInvalidStateTransition
	}
	if liquidity < minLiquidity {
		return ErrInsufficientLiquidity
	}
	m.InitialLiquidity = liquidity
	m.CurrentLiquidity = liquidity
	m.SharesYes = 0
	m.SharesNo = 0
	return m.transitionTo(MarketStateActive, at)
}

// ProposeResolution records a proposed outcome and transitions
// ACTIVE -> RESOLVING, opening the dispute window. The market must
// have been active for at least minDelay.
func (m *Market) ProposeResolution(resolver uuid.UUID, outcome Outcome, evidenceRef string, minDelay time.Duration, at time.Time) error {
	if !m.CanTransitionTo(MarketStateResolving) {
		return ErrInvalidStateTransition
	}
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}
	if at.Before(m.ActivatedAt.Add(minDelay)) {
		return ErrResolutionTooEarly
	}
	o := outcome
	m.ProposedOutcome = &o
	m.Resolver = resolver
	m.EvidenceRef = evidenceRef
	return m.transitionTo(MarketStateResolving, at)
}

// InitiateDispute challenges the proposed outcome and transitions
// RESOLVING -> DISPUTED. Legal only before the dispute deadline.
// Dispute tallies are reset for the fresh vote.
func (m *Market) InitiateDispute(initiator uuid.UUID, disputePeriod time.Duration, at time.Time) error {
	if !m.CanTransitionTo(MarketStateDisputed) {
		return ErrInvalidStateTransition
	}
	if !at.Before(m.ResolutionProposedAt.Add(disputePeriod)) {
		return ErrDisputePeriodExpired
	}
	m.DisputeInitiator = initiator
	m.DisputeAgree = 0
	m.DisputeDisagree = 0
	m.WasDisputed = true
	return m.transitionTo(MarketStateDisputed, at)
}

// FinalizeUndisputed transitions RESOLVING -> FINALIZED after the
// dispute deadline passed with no dispute. The proposed outcome
// becomes final.
func (m *Market) FinalizeUndisputed(disputePeriod time.Duration, at time.Time) error {
	if m.State != MarketStateResolving {
		return ErrInvalidStateTransition
	}
	if at.Before(m.ResolutionProposedAt.Add(disputePeriod)) {
		return ErrDisputePeriodNotExpired
	}
	o := *m.ProposedOutcome
	m.FinalOutcome = &o
	return m.transitionTo(MarketStateFinalized, at)
}

// FinalizeDisputed records the aggregated dispute tallies and
// transitions DISPUTED -> FINALIZED. When the agree rate meets
// thresholdBps the final outcome is the complement of the proposed
// one; otherwise the proposed outcome stands. A vote with no
// participants leaves the proposed outcome in place.
func (m *Market) FinalizeDisputed(agree, disagree, thresholdBps int, at time.Time) error {
	if m.State != MarketStateDisputed {
		return ErrInvalidStateTransition
	}
	m.DisputeAgree = agree
	m.DisputeDisagree = disagree

	o := *m.ProposedOutcome
	total := agree + disagree
	if total > 0 && ratioBps(agree, total) >= thresholdBps {
		o = o.Complement()
	}
	m.FinalOutcome = &o
	return m.transitionTo(MarketStateFinalized, at)
}

// RecordBuy applies a buy to the aggregate. The LMSR math has already
// been done by the engine; this only commits checked quantity updates.
func (m *Market) RecordBuy(side Outcome, shares, cost, protocolFee, resolverFee, lpFee fixedpoint.Value) error {
	if !m.IsTradable() {
		return ErrMarketNotActive
	}
	switch side {
	case OutcomeYes:
		updated, err := fixedpoint.Add(m.SharesYes, shares)
		if err != nil {
			return err
		}
		m.SharesYes = updated
	case OutcomeNo:
		updated, err := fixedpoint.Add(m.SharesNo, shares)
		if err != nil {
			return err
		}
		m.SharesNo = updated
	default:
		return ErrInvalidOutcome
	}

	liquidity, err := fixedpoint.Add(m.CurrentLiquidity, cost)
	if err != nil {
		return err
	}
	volume, err := fixedpoint.Add(m.TotalVolume, cost)
	if err != nil {
		return err
	}
	m.CurrentLiquidity = liquidity
	m.TotalVolume = volume
	return m.accrueFees(protocolFee, resolverFee, lpFee)
}

// RecordSell applies a sell to the aggregate with checked updates.
func (m *Market) RecordSell(side Outcome, shares, proceeds, protocolFee, resolverFee, lpFee fixedpoint.Value) error {
	if !m.IsTradable() {
		return ErrMarketNotActive
	}
	switch side {
	case OutcomeYes:
		updated, err := fixedpoint.Sub(m.SharesYes, shares)
		if err != nil {
			return ErrInsufficientShares
		}
		m.SharesYes = updated
	case OutcomeNo:
		updated, err := fixedpoint.Sub(m.SharesNo, shares)
		if err != nil {
			return ErrInsufficientShares
		}
		m.SharesNo = updated
	default:
		return ErrInvalidOutcome
	}

	liquidity, err := fixedpoint.Sub(m.CurrentLiquidity, proceeds)
	if err != nil {
		return ErrInsufficientLiquidity
	}
	volume, err := fixedpoint.Add(m.TotalVolume, proceeds)
	if err != nil {
		return err
	}
	m.CurrentLiquidity = liquidity
	m.TotalVolume = volume
	return m.accrueFees(protocolFee, resolverFee, lpFee)
}

func (m *Market) accrueFees(protocolFee, resolverFee, lpFee fixedpoint.Value) error {
	p, err := fixedpoint.Add(m.AccruedProtocolFees, protocolFee)
	if err != nil {
		return err
	}
	r, err := fixedpoint.Add(m.AccruedResolverFees, resolverFee)
	if err != nil {
		return err
	}
	l, err := fixedpoint.Add(m.AccruedLPFees, lpFee)
	if err != nil {
		return err
	}
	m.AccruedProtocolFees = p
	m.AccruedResolverFees = r
	m.AccruedLPFees = l
	return nil
}

// SettlementInfo is the read-only view an external payout calculator
// needs once a market is finalized.
type SettlementInfo struct {
	MarketID         uuid.UUID
	FinalOutcome     Outcome
	SharesYes        fixedpoint.Value
	SharesNo         fixedpoint.Value
	InitialLiquidity fixedpoint.Value
	CurrentLiquidity fixedpoint.Value
	FinalizedAt      time.Time
}

// Settlement returns the settlement view, or ErrMarketNotFinalized
// if the market has not reached its terminal state.
func (m *Market) Settlement() (*SettlementInfo, error) {
	if m.State != MarketStateFinalized || m.FinalOutcome == nil {
		return nil, ErrMarketNotFinalized
	}
	return &SettlementInfo{
		MarketID:         m.ID,
		FinalOutcome:     *m.FinalOutcome,
		SharesYes:        m.SharesYes,
		SharesNo:         m.SharesNo,
		InitialLiquidity: m.InitialLiquidity,
		CurrentLiquidity: m.CurrentLiquidity,
		FinalizedAt:      m.FinalizedAt,
	}, nil
}
