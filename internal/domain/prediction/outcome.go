package prediction

// Outcome is the selected verdict across all models.
type Outcome struct {
	Prediction bool
	Precentage float64
}

// SelectBest picks the result with the highest confidence. Ties keep the
// earlier result; no results at all yield the floor outcome {false, 0}.
func SelectBest(results []ModelResult) Outcome {
	best := Outcome{Prediction: false, Precentage: 0}
	first := true
	for _, r := range results {
		if first || r.Precentage > best.Precentage {
			best = Outcome{Prediction: r.Prediction, Precentage: r.Precentage}
			first = false
		}
	}
	return best
}

const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// Classify maps a confidence percentage to a risk tier and its advisory
// string. Boundary values fall into the higher band.
func Classify(precentage float64) (riskLevel, recommendation string) {
	switch {
	case precentage < 40:
		return RiskLow, "Maintain a healthy lifestyle and schedule routine checkups."
	case precentage < 70:
		return RiskModerate, "Monitor your blood sugar regularly and review your diet and exercise habits."
	case precentage < 90:
		return RiskHigh, "Consult a doctor and undergo further medical checkups."
	default:
		return RiskCritical, "Seek medical attention immediately for a full diabetes evaluation."
	}
}
