package plan

// Plan identifies a subscription tier.
type Plan string

const (
	Free     Plan = "free"
	Servicio Plan = "servicio"
	Tienda   Plan = "tienda"
)

// Unlimited is the quota sentinel for plans with no coupon cap.
const Unlimited int64 = -1

// DefaultQuotas returns the built-in plan → coupon quota table.
func DefaultQuotas() map[Plan]int64 {
	return map[Plan]int64{
		Free:     3,
		Servicio: 10,
		Tienda:   Unlimited,
	}
}

// Parse maps a raw plan string to a known Plan. Unknown values resolve
// to Free so that an unrecognized plan never grants extra capacity.
func Parse(s string) Plan {
	switch Plan(s) {
	case Free, Servicio, Tienda:
		return Plan(s)
	default:
		return Free
	}
}

// Registry is an immutable plan → quota lookup table, built once at
// startup and injected wherever quotas are checked.
type Registry struct {
	quotas map[Plan]int64
}

// NewRegistry builds a registry from the given quota table. A nil table
// falls back to DefaultQuotas. The input map is copied.
func NewRegistry(quotas map[Plan]int64) *Registry {
	if quotas == nil {
		quotas = DefaultQuotas()
	}
	copied := make(map[Plan]int64, len(quotas))
	for p, q := range quotas {
		copied[p] = q
	}
	return &Registry{quotas: copied}
}

// QuotaFor returns the coupon quota for a plan, or Unlimited. Unknown
// plans get the Free quota, the most restrictive tier.
func (r *Registry) QuotaFor(p Plan) int64 {
	if q, ok := r.quotas[p]; ok {
		return q
	}
	return r.quotas[Free]
}
