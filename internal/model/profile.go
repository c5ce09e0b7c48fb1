package model

// Attribute is one of the fixed character attribute keys
type Attribute string

const (
	AttributeSTR Attribute = "STR"
	AttributeVIT Attribute = "VIT"
	AttributeAGI Attribute = "AGI"
	AttributeINT Attribute = "INT"
	AttributePER Attribute = "PER"
	AttributeWIS Attribute = "WIS"
)

// Attributes lists every attribute key in display order
var Attributes = []Attribute{
	AttributeSTR,
	AttributeVIT,
	AttributeAGI,
	AttributeINT,
	AttributePER,
	AttributeWIS,
}

// IsValid reports whether a is one of the known attribute keys
func (a Attribute) IsValid() bool {
	for _, k := range Attributes {
		if k == a {
			return true
		}
	}
	return false
}

// QuestCategory groups daily tasks
type QuestCategory string

const (
	CategoryPhysical  QuestCategory = "physical"
	CategoryMental    QuestCategory = "mental"
	CategorySpiritual QuestCategory = "spiritual"
)

// QuestCategories lists every category in display order
var QuestCategories = []QuestCategory{
	CategoryPhysical,
	CategoryMental,
	CategorySpiritual,
}

// CategoryTotals is the fixed daily task count per category
var CategoryTotals = map[QuestCategory]int{
	CategoryPhysical:  4,
	CategoryMental:    3,
	CategorySpiritual: 2,
}

// IsValid reports whether c is one of the known quest categories
func (c QuestCategory) IsValid() bool {
	_, ok := CategoryTotals[c]
	return ok
}

const (
	// ExperiencePerLevel is the experience threshold that triggers a level-up
	ExperiencePerLevel = 100.0

	// ResourceMin and ResourceMax bound every resource value
	ResourceMin = 0.0
	ResourceMax = 100.0

	// DefaultAttributeValue is the starting value of every attribute
	DefaultAttributeValue = 10
)

// Resources holds the character's consumable pools
type Resources struct {
	HP      float64 `json:"hp"`
	MP      float64 `json:"mp"`
	Stamina float64 `json:"stamina"`
	Fatigue float64 `json:"fatigue"`
}

// CharacterIdentity is the cosmetic part of the character sheet
type CharacterIdentity struct {
	Name     string `json:"name"`
	Guild    string `json:"guild"`
	Race     string `json:"race"`
	Title    string `json:"title"`
	Region   string `json:"region"`
	Location string `json:"location"`
	Ping     string `json:"ping"`
}

// QuestProgress tracks completion of one quest category for the current day
type QuestProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Profile is the persisted per-user progression aggregate
type Profile struct {
	Level             int                             `json:"level"`
	Experience        float64                         `json:"experience"`
	Resources         Resources                       `json:"resources"`
	Attributes        map[Attribute]int               `json:"attributes"`
	StackedAttributes map[Attribute]float64           `json:"stackedAttributes"`
	Identity          CharacterIdentity               `json:"identity"`
	QuestProgress     map[QuestCategory]QuestProgress `json:"questProgress"`
	QuestCostsApplied map[QuestCategory]bool          `json:"questCostsApplied"`
	LastResetDate     string                          `json:"lastResetDate,omitempty"`
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p

	if p.Attributes != nil {
		c.Attributes = make(map[Attribute]int, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	if p.StackedAttributes != nil {
		c.StackedAttributes = make(map[Attribute]float64, len(p.StackedAttributes))
		for k, v := range p.StackedAttributes {
			c.StackedAttributes[k] = v
		}
	}
	if p.QuestProgress != nil {
		c.QuestProgress = make(map[QuestCategory]QuestProgress, len(p.QuestProgress))
		for k, v := range p.QuestProgress {
			c.QuestProgress[k] = v
		}
	}
	if p.QuestCostsApplied != nil {
		c.QuestCostsApplied = make(map[QuestCategory]bool, len(p.QuestCostsApplied))
		for k, v := range p.QuestCostsApplied {
			c.QuestCostsApplied[k] = v
		}
	}

	return &c
}

// EnsureMaps allocates any nil map so callers can write into it
func (p *Profile) EnsureMaps() {
	if p.Attributes == nil {
		p.Attributes = make(map[Attribute]int)
	}
	if p.StackedAttributes == nil {
		p.StackedAttributes = make(map[Attribute]float64)
	}
	if p.QuestProgress == nil {
		p.QuestProgress = make(map[QuestCategory]QuestProgress)
	}
	if p.QuestCostsApplied == nil {
		p.QuestCostsApplied = make(map[QuestCategory]bool)
	}
}
