package market

import (
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/internal/nexus"
	"github.com/joefazee/marketcore/models"
)

// maxFeeBps caps the combined trading fee at 10%.
const maxFeeBps = 1000

// Config represents the configuration for the market module.
type Config struct {
	// VoteAuthorityID identifies the backend allowed to submit
	// aggregated vote tallies.
	VoteAuthorityID string `env:"MARKET_VOTE_AUTHORITY_ID" validate:"required,uuid"`

	// AdminID identifies the operator allowed to pause and resume
	// the protocol.
	AdminID string `env:"MARKET_ADMIN_ID" validate:"required,uuid"`

	// ApprovalThresholdBps is the like-rate a proposal needs to be
	// approved, in basis points.
	ApprovalThresholdBps int `env:"MARKET_APPROVAL_THRESHOLD_BPS"`

	// DisputeThresholdBps is the agree-rate a dispute needs to
	// overturn the proposed outcome, in basis points.
	DisputeThresholdBps int `env:"MARKET_DISPUTE_THRESHOLD_BPS"`

	// MinProposalVotes is the minimum turnout for an approval vote.
	MinProposalVotes int `env:"MARKET_MIN_PROPOSAL_VOTES"`

	// MinResolutionDelay is how long a market must stay active before
	// a resolution can be proposed.
	MinResolutionDelay time.Duration `env:"MARKET_MIN_RESOLUTION_DELAY"`

	// DisputePeriod is the window after a proposed resolution during
	// which a dispute can be opened.
	DisputePeriod time.Duration `env:"MARKET_DISPUTE_PERIOD"`

	// MinInitialLiquidity is the smallest funding accepted at
	// activation, in fixed-point units.
	MinInitialLiquidity fixedpoint.Value `env:"MARKET_MIN_INITIAL_LIQUIDITY"`

	// Trading fee split, in basis points of the gross trade amount.
	ProtocolFeeBps int `env:"MARKET_PROTOCOL_FEE_BPS"`
	ResolverFeeBps int `env:"MARKET_RESOLVER_FEE_BPS"`
	LPFeeBps       int `env:"MARKET_LP_FEE_BPS"`
}

// Validate validates the market configuration.
func (c *Config) Validate() error {
	type validation struct {
		ok  bool
		err error
	}

	checks := []validation{
		{isUUID(c.VoteAuthorityID), models.ErrUnauthorized},
		{isUUID(c.AdminID), models.ErrUnauthorized},
		{c.ApprovalThresholdBps > 0 && c.ApprovalThresholdBps <= 10000, models.ErrInvalidThreshold},
		{c.DisputeThresholdBps > 0 && c.DisputeThresholdBps <= 10000, models.ErrInvalidThreshold},
		{c.MinProposalVotes > 0, models.ErrInvalidMinVotes},
		{c.MinResolutionDelay > 0, models.ErrInvalidTimeLimit},
		{c.DisputePeriod > 0, models.ErrInvalidTimeLimit},
		{c.MinInitialLiquidity > 0, models.ErrInvalidLiquidity},
		{c.ProtocolFeeBps >= 0 && c.ResolverFeeBps >= 0 && c.LPFeeBps >= 0, models.ErrInvalidFeeConfig},
		{c.ProtocolFeeBps+c.ResolverFeeBps+c.LPFeeBps <= maxFeeBps, models.ErrInvalidFeeConfig},
	}

	for _, v := range checks {
		if !v.ok {
			return v.err
		}
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// VoteAuthority returns the parsed vote authority identity.
func (c *Config) VoteAuthority() uuid.UUID {
	return uuid.MustParse(c.VoteAuthorityID)
}

// Admin returns the parsed admin identity.
func (c *Config) Admin() uuid.UUID {
	return uuid.MustParse(c.AdminID)
}

// TotalFeeBps returns the combined trading fee rate.
func (c *Config) TotalFeeBps() int {
	return c.ProtocolFeeBps + c.ResolverFeeBps + c.LPFeeBps
}

// GetDefaultConfig returns the default market configuration.
// Identities have no sane defaults and must be supplied.
func GetDefaultConfig() *Config {
	return &Config{
		ApprovalThresholdBps: 7000,
		DisputeThresholdBps:  6000,
		MinProposalVotes:     10,
		MinResolutionDelay:   24 * time.Hour,
		DisputePeriod:        48 * time.Hour,
		MinInitialLiquidity:  100 * fixedpoint.Scale,
		ProtocolFeeBps:       300,
		ResolverFeeBps:       200,
		LPFeeBps:             500,
	}
}

// LoadConfig resolves the market configuration from the environment
// on top of the defaults.
func LoadConfig() (*Config, error) {
	cfg := GetDefaultConfig()
	if err := nexus.NewLoader(nexus.WithOnlyEnvironment()).Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
