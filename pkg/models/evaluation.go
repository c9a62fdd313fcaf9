package models

// Direction indique dans quel sens une métrique s'améliore.
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Outcome classe une valeur courante par rapport à une référence.
type Outcome string

const (
	Improvement Outcome = "improvement"
	Regression  Outcome = "regression"
	Unchanged   Outcome = "unchanged"
)

// Evaluation compare une valeur courante à une référence (période précédente ou cible).
type Evaluation struct {
	Metric    string    `json:"metric"`
	Current   float64   `json:"current"`
	Reference float64   `json:"reference"`
	DeltaPct  float64   `json:"delta_pct"`
	Direction Direction `json:"direction"`
	Outcome   Outcome   `json:"outcome"`
}
