package scoring

import "github.com/jonathan/interview-conductor/internal/types"

// Severity thresholds for mapping raw anti-cheat signals to a coarse risk
// level. Signals below lowSeverityFloor are ignored as noise.
const (
	lowSeverityFloor  = 0.2
	mediumSeverity    = 0.4
	highSeverity      = 0.75
	mediumSignalCount = 3
)

// MapRisk reduces raw anomaly signals from the session monitor to a single
// risk level for the score summary. The mapping is deterministic: any
// single severe signal is high risk, a moderately severe signal or an
// accumulation of smaller ones is medium, anything else is low.
func MapRisk(signals []types.AntiCheatSignal) types.RiskLevel {
	var maxSeverity float64
	notable := 0

	for _, sig := range signals {
		if sig.Severity > maxSeverity {
			maxSeverity = sig.Severity
		}
		if sig.Severity >= lowSeverityFloor {
			notable++
		}
	}

	switch {
	case maxSeverity >= highSeverity:
		return types.RiskHigh
	case maxSeverity >= mediumSeverity, notable >= mediumSignalCount:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}
