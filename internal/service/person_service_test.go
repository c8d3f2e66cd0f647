package service

import (
	"context"
	"errors"
	"testing"

	"custody-tracker/internal/dto"
)

func setupTestPersonService() (PersonService, *mockStore) {
	store := newMockStore()
	return NewPersonService(store.repo, testLogger), store
}

func fullRegistration(cpf string, numbers ...string) *dto.FullRegistrationRequest {
	req := &dto.FullRegistrationRequest{
		Person: dto.PersonRequest{
			FullName:   "João da Silva",
			CPF:        strPtr(cpf),
			MotherName: strPtr("Maria da Silva"),
			BirthDate:  strPtr("1990-04-12"),
		},
	}
	for _, n := range numbers {
		req.Processes = append(req.Processes, dto.ProcessRequest{
			ProcessNumber:    n,
			ProceduralStatus: strPtr("preventive detention"),
			ArrestedOn:       strPtr("2024-01-15"),
		})
	}
	return req
}

// ── CreateFull ──

func TestPersonService_CreateFull(t *testing.T) {
	svc, store := setupTestPersonService()

	resp, err := svc.CreateFull(context.Background(), fullRegistration("529.982.247-25", "0001234-56.2024.8.26.0001", "0009999-11.2024.8.26.0001"))
	if err != nil {
		t.Fatalf("full registration failed: %v", err)
	}
	if resp.CPF == nil || *resp.CPF != "52998224725" {
		t.Errorf("expected normalised CPF, got %v", resp.CPF)
	}
	if resp.BirthDate == nil || *resp.BirthDate != "1990-04-12" {
		t.Errorf("unexpected birth date %v", resp.BirthDate)
	}
	if len(resp.Processes) != 2 {
		t.Fatalf("expected 2 processes, got %d", len(resp.Processes))
	}
	for _, p := range resp.Processes {
		if p.PersonID != resp.ID {
			t.Errorf("process %s not linked to person %s", p.ID, resp.ID)
		}
	}
	if len(store.processes.processes) != 2 {
		t.Errorf("expected 2 stored processes, got %d", len(store.processes.processes))
	}
}

func TestPersonService_CreateFull_RollsBackOnProcessFailure(t *testing.T) {
	svc, store := setupTestPersonService()
	store.processes.batchErr = errStorage

	_, err := svc.CreateFull(context.Background(), fullRegistration("52998224725", "0001234-56.2024.8.26.0001"))
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(store.persons.persons) != 0 {
		t.Error("person must not survive a failed registration")
	}
}

func TestPersonService_CreateFull_Validation(t *testing.T) {
	svc, store := setupTestPersonService()
	if _, err := svc.CreateFull(context.Background(), fullRegistration("52998224725")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := svc.CreateFull(context.Background(), fullRegistration("52998224725")); !errors.Is(err, ErrPersonCPFExists) {
		t.Errorf("expected ErrPersonCPFExists, got %v", err)
	}
	if _, err := svc.CreateFull(context.Background(), fullRegistration("12345678900")); !errors.Is(err, ErrInvalidPersonCPF) {
		t.Errorf("expected ErrInvalidPersonCPF, got %v", err)
	}

	bad := fullRegistration("11144477735", "0001")
	bad.Processes[0].ArrestedOn = strPtr("15/01/2024")
	if _, err := svc.CreateFull(context.Background(), bad); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if len(store.persons.persons) != 1 {
		t.Errorf("rejected registrations must not be stored, have %d", len(store.persons.persons))
	}
}

func TestPersonService_CreateWithoutCPF(t *testing.T) {
	svc, _ := setupTestPersonService()

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), &dto.PersonRequest{FullName: "Unknown Person", CPF: strPtr("")}); err != nil {
			t.Fatalf("person without CPF should be accepted: %v", err)
		}
	}
}

// ── read / update / delete ──

func TestPersonService_GetUpdateDelete(t *testing.T) {
	svc, _ := setupTestPersonService()
	created, _ := svc.CreateFull(context.Background(), fullRegistration("52998224725", "0001234-56.2024.8.26.0001"))

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Processes) != 1 {
		t.Errorf("expected processes on read, got %d", len(got.Processes))
	}

	updated, err := svc.Update(context.Background(), created.ID, &dto.PersonRequest{
		FullName: "João Pereira da Silva",
		CPF:      strPtr("52998224725"),
	})
	if err != nil {
		t.Fatalf("update with own CPF should pass: %v", err)
	}
	if updated.FullName != "João Pereira da Silva" || updated.MotherName != nil {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound on second delete, got %v", err)
	}
}

func TestPersonService_Update_CPFTakenByOther(t *testing.T) {
	svc, _ := setupTestPersonService()
	svc.CreateFull(context.Background(), fullRegistration("52998224725"))
	other, _ := svc.CreateFull(context.Background(), fullRegistration("11144477735"))

	_, err := svc.Update(context.Background(), other.ID, &dto.PersonRequest{FullName: "Other", CPF: strPtr("52998224725")})
	if !errors.Is(err, ErrPersonCPFExists) {
		t.Errorf("expected ErrPersonCPFExists, got %v", err)
	}
}

func TestPersonService_Search(t *testing.T) {
	svc, _ := setupTestPersonService()
	svc.CreateFull(context.Background(), fullRegistration("52998224725", "0001"))
	req := fullRegistration("11144477735", "0002")
	req.Person.FullName = "Pedro Alves"
	req.Processes[0].ProceduralStatus = strPtr("sentenced")
	svc.CreateFull(context.Background(), req)

	results, total, err := svc.Search(context.Background(), &dto.PersonSearchRequest{Name: "silva"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || results[0].FullName != "João da Silva" {
		t.Errorf("unexpected name search: %d %+v", total, results)
	}

	_, total, _ = svc.Search(context.Background(), &dto.PersonSearchRequest{ProceduralStatus: "sentenced"})
	if total != 1 {
		t.Errorf("expected one sentenced person, got %d", total)
	}

	_, total, _ = svc.Search(context.Background(), &dto.PersonSearchRequest{ArrestedOn: "2024-01-15"})
	if total != 2 {
		t.Errorf("expected both persons by arrest date, got %d", total)
	}
}

// ── processes ──

func TestPersonService_AddAndUpdateProcess(t *testing.T) {
	svc, _ := setupTestPersonService()
	person, _ := svc.CreateFull(context.Background(), fullRegistration("52998224725"))

	proc, err := svc.AddProcess(context.Background(), person.ID, &dto.ProcessRequest{ProcessNumber: " 0001234-56.2024.8.26.0001 "})
	if err != nil {
		t.Fatalf("add process failed: %v", err)
	}
	if proc.ProcessNumber != "0001234-56.2024.8.26.0001" || proc.PersonID != person.ID {
		t.Errorf("unexpected process: %+v", proc)
	}

	updated, err := svc.UpdateProcess(context.Background(), proc.ID, &dto.ProcessRequest{
		ProcessNumber: proc.ProcessNumber,
		CustodyType:   strPtr("preventive"),
		DetentionSite: strPtr("CDP Pinheiros"),
	})
	if err != nil {
		t.Fatalf("update process failed: %v", err)
	}
	if updated.CustodyType == nil || *updated.CustodyType != "preventive" {
		t.Errorf("custody type not applied: %+v", updated)
	}

	if _, err := svc.AddProcess(context.Background(), "ghost", &dto.ProcessRequest{ProcessNumber: "1"}); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
	if _, err := svc.UpdateProcess(context.Background(), "ghost", &dto.ProcessRequest{ProcessNumber: "1"}); !errors.Is(err, ErrProcessNotFound) {
		t.Errorf("expected ErrProcessNotFound, got %v", err)
	}
}
