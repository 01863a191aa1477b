package patient

import (
	"time"

	"github.com/google/uuid"
)

// Record is a persisted risk assessment. Records are immutable after
// creation; the owner's profile name is stamped on at submission time.
//
// Precentage keeps the spelling used by the prediction models' wire format so
// stored records and API responses match the external contract.
type Record struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Name        string    `json:"name"`

	Age              int     `json:"age"`
	Pregnancies      int     `json:"pregnancies"`
	Glucose          float64 `json:"glucose"`
	BloodPressure    float64 `json:"bloodpressure"`
	SkinThickness    float64 `json:"skinthickness"`
	Insulin          float64 `json:"insulin"`
	BMI              float64 `json:"bmi"`
	DiabetesPedigree float64 `json:"diabetespedigreefunction"`

	Prediction     bool    `json:"prediction"`
	Precentage     float64 `json:"precentage"`
	RiskLevel      string  `json:"riskLevel"`
	Recommendation string  `json:"recommendation"`

	CreatedAt time.Time `json:"created_at"`
}
