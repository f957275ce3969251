package model

// Tier is the closed set of subscription plans. Unknown tiers are a
// validation error at the account boundary, never a runtime lookup miss.
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierElite        Tier = "elite"
	TierTeam         Tier = "team"
	TierBrokerage    Tier = "brokerage"
)

// TierLimits is the limits record for a plan. MaxClients < 0 means
// unlimited.
type TierLimits struct {
	MaxClients int
	MaxAgents  int
}

// LimitsFor returns the limits record for a tier. The switch is exhaustive
// over the Tier constants; anything else reports ok=false.
func LimitsFor(t Tier) (TierLimits, bool) {
	switch t {
	case TierStarter:
		return TierLimits{MaxClients: 20, MaxAgents: 1}, true
	case TierProfessional:
		return TierLimits{MaxClients: 100, MaxAgents: 1}, true
	case TierElite:
		return TierLimits{MaxClients: 500, MaxAgents: 1}, true
	case TierTeam:
		return TierLimits{MaxClients: 1000, MaxAgents: 10}, true
	case TierBrokerage:
		return TierLimits{MaxClients: -1, MaxAgents: -1}, true
	default:
		return TierLimits{}, false
	}
}

// AllowsMoreClients reports whether an agent at currentCount active clients
// may add another under these limits.
func (l TierLimits) AllowsMoreClients(currentCount int) bool {
	return l.MaxClients < 0 || currentCount < l.MaxClients
}
