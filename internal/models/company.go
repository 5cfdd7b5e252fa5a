package models

import (
	"fmt"
	"time"
)

// PE is a price-to-earnings ratio that is either known or unavailable.
// Unavailable is distinct from a known value of zero.
type PE struct {
	value float64
	known bool
}

// KnownPE returns a PE holding v.
func KnownPE(v float64) PE {
	return PE{value: v, known: true}
}

// UnavailablePE returns the "not available" PE.
func UnavailablePE() PE {
	return PE{}
}

// PEFromPointer maps a nullable provider value onto PE.
func PEFromPointer(v *float64) PE {
	if v == nil {
		return UnavailablePE()
	}
	return KnownPE(*v)
}

// Value returns the ratio and whether it is known.
func (p PE) Value() (float64, bool) {
	return p.value, p.known
}

// String renders the ratio, or "N/A".
func (p PE) String() string {
	if !p.known {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", p.value)
}

// CompanySnapshot is the point-in-time company data for one report run.
type CompanySnapshot struct {
	Ticker            string
	Name              string
	Currency          string
	SharesOutstanding int64 // 0 when the provider has no count
	CurrentPrice      float64
	TrailingPE        PE
	ForwardPE         PE
	InsiderOwnership  *float64 // fraction in [0,1], nil when absent
	FetchedAt         time.Time
}
