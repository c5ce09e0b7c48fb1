package progression

import (
	"errors"
	"fmt"
	"math"

	"github.com/syslvlup/syslvlup/internal/model"
)

// ErrInvalidDelta is returned by the strict variants for deltas the permissive
// functions would silently coerce
var ErrInvalidDelta = errors.New("invalid progression delta")

// Strict wraps the engine with input validation. Hosts opt in to it; the
// package-level functions stay permissive.
type Strict struct{}

// ApplyExperience rejects negative or non-finite XP before delegating
func (Strict) ApplyExperience(p *model.Profile, deltaXP float64) (*model.Profile, error) {
	if math.IsNaN(deltaXP) || math.IsInf(deltaXP, 0) || deltaXP < 0 {
		return nil, fmt.Errorf("%w: experience %v", ErrInvalidDelta, deltaXP)
	}
	return ApplyExperience(p, deltaXP), nil
}

// AddStackedAttribute rejects unknown keys and non-finite amounts
func (Strict) AddStackedAttribute(p *model.Profile, key model.Attribute, amount float64) (*model.Profile, error) {
	if !key.IsValid() {
		return nil, fmt.Errorf("%w: unknown attribute %q", ErrInvalidDelta, key)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: stacked amount %v", ErrInvalidDelta, amount)
	}
	return AddStackedAttribute(p, key, amount), nil
}

// ApplyResourceDelta rejects non-finite deltas
func (Strict) ApplyResourceDelta(p *model.Profile, delta ResourceDelta) (*model.Profile, error) {
	for _, d := range []*float64{delta.HP, delta.MP, delta.Stamina, delta.Fatigue} {
		if d != nil && (math.IsNaN(*d) || math.IsInf(*d, 0)) {
			return nil, fmt.Errorf("%w: resource %v", ErrInvalidDelta, *d)
		}
	}
	return ApplyResourceDelta(p, delta), nil
}
