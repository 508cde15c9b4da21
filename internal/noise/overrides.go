package noise

// Overrides is a partial field configuration as sent by a client. Nil
// numbers and empty colors keep the base value, so zero is a real value.
type Overrides struct {
	GridSize  *float64 `json:"gridSize,omitempty"`
	Sharpness *float64 `json:"sharpness,omitempty"`
	Rate      *float64 `json:"rate,omitempty"`
	AI        string   `json:"ai,omitempty"`
	Human     string   `json:"human,omitempty"`
}

// Apply returns base with the overrides set, validated.
func (o Overrides) Apply(base Field) (Field, error) {
	f := base
	if o.GridSize != nil {
		f.GridSize = *o.GridSize
	}
	if o.Sharpness != nil {
		f.Sharpness = *o.Sharpness
	}
	if o.Rate != nil {
		f.Rate = *o.Rate
	}
	if o.AI != "" || o.Human != "" {
		ai, human := o.AI, o.Human
		if ai == "" {
			ai = DefaultAIColor
		}
		if human == "" {
			human = DefaultHumanColor
		}
		if err := f.ParseColors(ai, human); err != nil {
			return Field{}, err
		}
	}
	if err := f.Validate(); err != nil {
		return Field{}, err
	}
	return f, nil
}
