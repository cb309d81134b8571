// Package models provides the records shared between the portfolio commands
// and the transaction journal.
package models

// Side represents what a journal entry did to a holding.
type Side string

const (
	SideBuy    Side = "BUY"
	SideSell   Side = "SELL"
	SideUpdate Side = "UPDATE" // market price change, no units move
)

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	switch s {
	case SideBuy, SideSell, SideUpdate:
		return true
	}
	return false
}

// Kind mirrors the persisted holding type literal.
type Kind string

const (
	KindStock      Kind = "stock"
	KindMutualFund Kind = "mutualfund"
)
