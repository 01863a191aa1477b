package prediction

import (
	"strconv"
	"strings"
)

// Input holds the coerced health metrics of one submission.
type Input struct {
	Name             string
	Age              int
	Pregnancies      int
	Glucose          float64
	BloodPressure    float64
	SkinThickness    float64
	Insulin          float64
	BMI              float64
	DiabetesPedigree float64
}

// requiredFields is the validation order; the first offending field is the one
// reported.
var requiredFields = []string{
	"age",
	"pregnancies",
	"glucose",
	"bloodpressure",
	"skinthickness",
	"insulin",
	"bmi",
	"diabetespedigreefunction",
}

// ParseInput validates and coerces a raw submission body. Field names are
// matched case-insensitively because clients send mixed casing. A missing or
// non-numeric required field aborts with a *ValidationError naming it; after
// validation, any residual coercion failure masks to zero rather than erroring.
func ParseInput(raw map[string]interface{}) (*Input, error) {
	lowered := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		key := strings.ToLower(k)
		if _, seen := lowered[key]; !seen {
			lowered[key] = v
		}
	}

	for _, field := range requiredFields {
		v, ok := lowered[field]
		if !ok {
			return nil, &ValidationError{Field: field}
		}
		if _, ok := toNumber(v); !ok {
			return nil, &ValidationError{Field: field}
		}
	}

	name := "Unknown"
	if v, ok := lowered["name"].(string); ok && strings.TrimSpace(v) != "" {
		name = strings.TrimSpace(v)
	}

	return &Input{
		Name:             name,
		Age:              int(numberOrZero(lowered["age"])),
		Pregnancies:      int(numberOrZero(lowered["pregnancies"])),
		Glucose:          numberOrZero(lowered["glucose"]),
		BloodPressure:    numberOrZero(lowered["bloodpressure"]),
		SkinThickness:    numberOrZero(lowered["skinthickness"]),
		Insulin:          numberOrZero(lowered["insulin"]),
		BMI:              numberOrZero(lowered["bmi"]),
		DiabetesPedigree: numberOrZero(lowered["diabetespedigreefunction"]),
	}, nil
}

// toNumber accepts JSON numbers and numeric strings.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func numberOrZero(v interface{}) float64 {
	n, ok := toNumber(v)
	if !ok {
		return 0
	}
	return n
}

// Payload is the metrics document sent to the prediction endpoint.
func (in *Input) Payload() map[string]interface{} {
	return map[string]interface{}{
		"age":                      in.Age,
		"pregnancies":              in.Pregnancies,
		"glucose":                  in.Glucose,
		"bloodpressure":            in.BloodPressure,
		"skinthickness":            in.SkinThickness,
		"insulin":                  in.Insulin,
		"bmi":                      in.BMI,
		"diabetespedigreefunction": in.DiabetesPedigree,
	}
}
