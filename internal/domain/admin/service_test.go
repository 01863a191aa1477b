package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/domain/user"
)

type stubUsers struct {
	users map[uuid.UUID]*user.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: make(map[uuid.UUID]*user.User)}
}

func (s *stubUsers) add(name, email, role string) *user.User {
	u := &user.User{ID: uuid.New(), Name: name, Email: email, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *stubUsers) Create(_ context.Context, u *user.User) error { return nil }
func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}
func (s *stubUsers) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUsers) Update(context.Context, *user.User) error                { return nil }
func (s *stubUsers) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }
func (s *stubUsers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
func (s *stubUsers) List(_ context.Context, limit, offset int) ([]*user.User, int, error) {
	var all []*user.User
	for _, u := range s.users {
		all = append(all, u)
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

type stubRecords struct {
	records map[uuid.UUID]*patient.Record
}

func newStubRecords() *stubRecords {
	return &stubRecords{records: make(map[uuid.UUID]*patient.Record)}
}

func (s *stubRecords) add(owner uuid.UUID, riskLevel string) *patient.Record {
	r := &patient.Record{
		ID: uuid.New(), OwnerUserID: owner, Name: "Ada", Age: 45,
		Glucose: 150, BMI: 28.4, Prediction: riskLevel != "Low",
		Precentage: 82, RiskLevel: riskLevel,
		Recommendation: "Consult a doctor and undergo further medical checkups.",
		CreatedAt:      time.Now(),
	}
	s.records[r.ID] = r
	return r
}

func (s *stubRecords) Create(_ context.Context, r *patient.Record) error { return nil }
func (s *stubRecords) GetByID(_ context.Context, id uuid.UUID) (*patient.Record, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return r, nil
}
func (s *stubRecords) ListByOwner(context.Context, uuid.UUID, int, int) ([]*patient.Record, int, error) {
	return nil, 0, nil
}
func (s *stubRecords) ListAll(_ context.Context, limit, offset int) ([]*patient.Record, int, error) {
	var all []*patient.Record
	for _, r := range s.records {
		all = append(all, r)
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}
func (s *stubRecords) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.records[id]; !ok {
		return patient.ErrNotFound
	}
	delete(s.records, id)
	return nil
}
func (s *stubRecords) CountByRiskLevel(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, r := range s.records {
		counts[r.RiskLevel]++
	}
	return counts, nil
}

func TestStats(t *testing.T) {
	users := newStubUsers()
	records := newStubRecords()
	svc := NewService(users, records)

	users.add("Ada", "ada@example.com", user.RoleUser)
	users.add("Bo", "bo@example.com", user.RoleAdmin)
	records.add(uuid.New(), "High")
	records.add(uuid.New(), "High")
	records.add(uuid.New(), "Low")

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Users != 2 || stats.Records != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.RiskLevels["High"] != 2 || stats.RiskLevels["Low"] != 1 {
		t.Errorf("unexpected risk distribution: %v", stats.RiskLevels)
	}
}

func TestDeleteUser(t *testing.T) {
	users := newStubUsers()
	svc := NewService(users, newStubRecords())

	u := users.add("Ada", "ada@example.com", user.RoleUser)
	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	records := newStubRecords()
	svc := NewService(newStubUsers(), records)

	r := records.add(uuid.New(), "Low")
	if err := svc.DeleteRecord(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := records.GetByID(context.Background(), r.ID); !errors.Is(err, patient.ErrNotFound) {
		t.Error("record should be gone")
	}
}

func TestExportRecords(t *testing.T) {
	records := newStubRecords()
	svc := NewService(newStubUsers(), records)

	records.add(uuid.New(), "High")
	records.add(uuid.New(), "Low")

	data, err := svc.ExportRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][13] != "Risk Level" {
		t.Errorf("unexpected headers: %v", rows[0])
	}
}

func TestExportRecords_Empty(t *testing.T) {
	svc := NewService(newStubUsers(), newStubRecords())

	data, err := svc.ExportRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(f.GetSheetName(0))
	if len(rows) != 1 {
		t.Errorf("expected only the header row, got %d", len(rows))
	}
}
