package prediction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/domain/user"
	"github.com/glucotrack/glucotrack/internal/platform/auth"
)

// Result is the submission response contract. Precentage keeps the wire
// spelling of the prediction models.
type Result struct {
	Prediction     bool    `json:"prediction"`
	Precentage     float64 `json:"precentage"`
	RiskLevel      string  `json:"riskLevel"`
	Recommendation string  `json:"recommendation"`
}

// Service orchestrates a submission end to end: resolve the caller, validate
// and coerce the metrics, score them through the gateway, persist the record,
// and hand notification plus email off to the dispatcher.
type Service struct {
	users      user.Repository
	records    patient.Repository
	gateway    Gateway
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

func NewService(users user.Repository, records patient.Repository, gateway Gateway, dispatcher *Dispatcher, logger zerolog.Logger) *Service {
	return &Service{
		users:      users,
		records:    records,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit runs one risk assessment for the authenticated caller.
//
// Nothing is persisted until the gateway has answered; once the record is
// saved, notification and email delivery happen asynchronously and cannot
// fail the response.
func (s *Service) Submit(ctx context.Context, raw map[string]interface{}) (*Result, error) {
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, ErrUnauthenticated
	}

	owner, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	in, err := ParseInput(raw)
	if err != nil {
		return nil, err
	}

	// The recorded name is always the profile name, never caller-supplied.
	in.Name = owner.Name

	results, err := s.gateway.Predict(ctx, in)
	if err != nil {
		return nil, err
	}

	outcome := SelectBest(results)
	riskLevel, recommendation := Classify(outcome.Precentage)

	rec := &patient.Record{
		OwnerUserID:      owner.ID,
		Name:             owner.Name,
		Age:              in.Age,
		Pregnancies:      in.Pregnancies,
		Glucose:          in.Glucose,
		BloodPressure:    in.BloodPressure,
		SkinThickness:    in.SkinThickness,
		Insulin:          in.Insulin,
		BMI:              in.BMI,
		DiabetesPedigree: in.DiabetesPedigree,
		Prediction:       outcome.Prediction,
		Precentage:       outcome.Precentage,
		RiskLevel:        riskLevel,
		Recommendation:   recommendation,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.ID.String()).Msg("record persist failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.dispatcher.Enqueue(Task{
		UserID:            owner.ID,
		RecordID:          rec.ID,
		Email:             owner.Email,
		Name:              owner.Name,
		RiskLevel:         riskLevel,
		Precentage:        outcome.Precentage,
		PredictedPositive: outcome.Prediction,
	})

	return &Result{
		Prediction:     outcome.Prediction,
		Precentage:     outcome.Precentage,
		RiskLevel:      riskLevel,
		Recommendation: recommendation,
	}, nil
}
