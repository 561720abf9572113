package engine

import (
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/store"
)

// New builds the analysis workflow. journal may be nil when journaling is off.
func New(cfg *store.Config, market interfaces.SnapshotProvider, headlines interfaces.HeadlineSource, advisor interfaces.Advisor, journal interfaces.Journal) interfaces.Engine {
	return newEngine(cfg, market, headlines, advisor, journal)
}
