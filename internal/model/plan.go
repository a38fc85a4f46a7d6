package model

// UnlimitedQuota is the sentinel stored in planes.clases_mensuales for
// plans without a monthly booking cap.
const UnlimitedQuota = 999

// Profile is a role tag from the perfiles table.
type Profile struct {
	ID   uint64
	Name string
}

// PlanType defines how long a plan lasts once paid.
type PlanType struct {
	ID           uint64
	Name         string
	DurationDays int
}

// Plan is a membership product members subscribe to.
type Plan struct {
	ID           uint64
	Name         string
	Price        float64
	MonthlyQuota int
	PlanTypeID   *uint64
	PlanTypeName *string // joined from tipos_planes
	DurationDays *int    // joined from tipos_planes
}

// Unlimited reports whether the plan has no monthly booking cap.
func (p *Plan) Unlimited() bool {
	return p.MonthlyQuota >= UnlimitedQuota
}
