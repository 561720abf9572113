package interfaces

import "stock-advisor/internal/types"

// Journal records the outcome of every analysis for later inspection.
type Journal interface {
	Append(a *types.Analysis) error
}
