// Package admin provides the dashboard operations available to
// administrators: account and record management, aggregate statistics, and
// spreadsheet export.
package admin

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/domain/user"
)

type Service struct {
	users   user.Repository
	records patient.Repository
}

func NewService(users user.Repository, records patient.Repository) *Service {
	return &Service{users: users, records: records}
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) ListAllRecords(ctx context.Context, limit, offset int) ([]*patient.Record, int, error) {
	return s.records.ListAll(ctx, limit, offset)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

// DeleteUser removes an account; the user's records and notifications go with
// it via FK cascade.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// Stats is the dashboard summary.
type Stats struct {
	Users      int            `json:"users"`
	Records    int            `json:"records"`
	RiskLevels map[string]int `json:"risk_levels"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	_, userCount, err := s.users.List(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	_, recordCount, err := s.records.ListAll(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	byRisk, err := s.records.CountByRiskLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by risk level: %w", err)
	}
	return &Stats{Users: userCount, Records: recordCount, RiskLevels: byRisk}, nil
}

const exportBatchSize = 500

var exportHeaders = []string{
	"ID", "Owner", "Name", "Age", "Pregnancies", "Glucose", "Blood Pressure",
	"Skin Thickness", "Insulin", "BMI", "Diabetes Pedigree", "Prediction",
	"Precentage", "Risk Level", "Recommendation", "Created At",
}

// ExportRecords renders all patient records as an XLSX workbook.
func (s *Service) ExportRecords(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so no deferred Close before the buffer is
	// filled.
	sheet := f.GetSheetName(0)

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	row := 2
	for offset := 0; ; offset += exportBatchSize {
		records, _, err := s.records.ListAll(ctx, exportBatchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		if len(records) == 0 {
			break
		}
		for _, rec := range records {
			values := []interface{}{
				rec.ID.String(), rec.OwnerUserID.String(), rec.Name, rec.Age,
				rec.Pregnancies, rec.Glucose, rec.BloodPressure,
				rec.SkinThickness, rec.Insulin, rec.BMI, rec.DiabetesPedigree,
				rec.Prediction, rec.Precentage, rec.RiskLevel,
				rec.Recommendation, rec.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return nil, fmt.Errorf("record cell: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, fmt.Errorf("write record: %w", err)
				}
			}
			row++
		}
		if len(records) < exportBatchSize {
			break
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
