package models

// Cancellation policy IDs
const (
	PolicyFlexible = "flexible"
	PolicyModerate = "moderate"
	PolicyStrict   = "strict"
	PolicyNoRefund = "no_refund"
)

// DefaultPolicyID is applied when a listing carries no policy or an unknown
// one. A listing without a policy is treated as guest-friendly on purpose.
const DefaultPolicyID = PolicyFlexible

// RefundTier maps a minimum number of days before check-in to a refund
// percentage. Tiers are ordered by MinDays descending; the first tier whose
// MinDays the remaining days meet wins.
type RefundTier struct {
	MinDays int `json:"min_days"`
	Percent int `json:"percent"`
}

// CancellationPolicy is static configuration, not a persisted entity.
type CancellationPolicy struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Tiers      []RefundTier `json:"tiers"`
	Conditions string       `json:"conditions"`
}

// CancellationPolicies is the immutable catalog. Not user-editable at runtime.
var CancellationPolicies = map[string]CancellationPolicy{
	PolicyFlexible: {
		ID:   PolicyFlexible,
		Name: "Flexible",
		Tiers: []RefundTier{
			{MinDays: 1, Percent: 100},
			{MinDays: 0, Percent: 50},
		},
		Conditions: "Full refund up to 1 day before check-in, 50% on the day of check-in.",
	},
	PolicyModerate: {
		ID:   PolicyModerate,
		Name: "Moderate",
		Tiers: []RefundTier{
			{MinDays: 5, Percent: 100},
			{MinDays: 1, Percent: 50},
		},
		Conditions: "Full refund up to 5 days before check-in, 50% up to 1 day before.",
	},
	PolicyStrict: {
		ID:   PolicyStrict,
		Name: "Strict",
		Tiers: []RefundTier{
			{MinDays: 7, Percent: 50},
		},
		Conditions: "50% refund up to 7 days before check-in, none after.",
	},
	PolicyNoRefund: {
		ID:         PolicyNoRefund,
		Name:       "Non-refundable",
		Tiers:      nil,
		Conditions: "No refund on cancellation.",
	},
}

// GetCancellationPolicy returns the policy for id, falling back to the
// default policy for unknown or empty ids.
func GetCancellationPolicy(id string) CancellationPolicy {
	if p, ok := CancellationPolicies[id]; ok {
		return p
	}
	return CancellationPolicies[DefaultPolicyID]
}

// ResolveRefundPercentage derives the guest-facing refund percentage from a
// policy id and the number of days remaining until check-in. Days may be
// negative when check-in has already passed. Pure; no failure modes.
func ResolveRefundPercentage(policyID string, daysUntilCheckIn int) int {
	policy := GetCancellationPolicy(policyID)
	for _, tier := range policy.Tiers {
		if daysUntilCheckIn >= tier.MinDays {
			return tier.Percent
		}
	}
	return 0
}
