// Package pricing resolves the effective unit price of catalog products.
// Products may carry a special price that applies from a configured hour
// of the local day (evening clearance of fresh bakes).
package pricing

import (
	"context"
	"time"

	"bakerypos/internal/core/types"
	"bakerypos/pkg/logger"
)

// DefaultSpecialStartHour is the local hour the special price kicks in.
const DefaultSpecialStartHour = 19

// Rate is the pricing data of one product.
type Rate struct {
	Price            types.Money
	SpecialPrice     *types.Money
	IsSpecialPricing bool
}

// special reports whether the product can sell at a special price at all.
func (r Rate) special() bool {
	return r.IsSpecialPricing && r.SpecialPrice != nil
}

// CurrentPrice returns the special price when special pricing is enabled,
// a special price is set and hour >= startHour; the base price otherwise.
func CurrentPrice(r Rate, hour, startHour int) types.Money {
	if r.special() && hour >= startHour {
		return *r.SpecialPrice
	}
	return r.Price
}

// Config configures the Policy.
type Config struct {
	StartHour int
	Location  *time.Location

	// Rule is an optional CEL expression replacing the hour comparison.
	Rule string
}

// Policy applies the pricing rule in the shop's time zone.
type Policy struct {
	startHour int
	loc       *time.Location
	rule      *Rule
}

// NewPolicy compiles the optional rule. A rule that does not compile to a
// boolean expression is a configuration error.
func NewPolicy(cfg Config) (*Policy, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	p := &Policy{startHour: cfg.StartHour, loc: loc}
	if cfg.Rule != "" {
		rule, err := CompileRule(cfg.Rule)
		if err != nil {
			return nil, err
		}
		p.rule = rule
	}
	return p, nil
}

// StartHour returns the configured special-price hour.
func (p *Policy) StartHour() int {
	return p.startHour
}

// Location returns the shop time zone.
func (p *Policy) Location() *time.Location {
	return p.loc
}

// CurrentPrice is CurrentPrice with the configured start hour.
func (p *Policy) CurrentPrice(r Rate, hour int) types.Money {
	return CurrentPrice(r, hour, p.startHour)
}

// Snapshot captures the clock once. All lines of a cart are priced from the
// same Quote, so a cart processed across the start hour never mixes prices.
func (p *Policy) Snapshot(ctx context.Context, now time.Time) Quote {
	local := now.In(p.loc)
	q := Quote{
		At:      local,
		Hour:    local.Hour(),
		Weekday: int(local.Weekday()),
	}

	q.specialWindow = q.Hour >= p.startHour
	if p.rule != nil {
		open, err := p.rule.Eval(q.Hour, p.startHour, q.Weekday)
		if err != nil {
			logger.Warn(ctx, "special price rule failed, using hour rule", "error", err)
		} else {
			q.specialWindow = open
		}
	}
	return q
}

// Quote is a pricing snapshot for one cart.
type Quote struct {
	At      time.Time
	Hour    int
	Weekday int

	specialWindow bool
}

// SpecialWindow reports whether special prices apply in this snapshot.
func (q Quote) SpecialWindow() bool {
	return q.specialWindow
}

// Price returns the unit price of a product under this snapshot.
func (q Quote) Price(r Rate) types.Money {
	if r.special() && q.specialWindow {
		return *r.SpecialPrice
	}
	return r.Price
}
