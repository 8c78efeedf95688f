package schedule

import (
	"context"
	"embed"
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
)

func TestSeedIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "lowercases", value: "Window-1", expected: "window_1"},
		{name: "replacesSeparators", value: "patio table/2", expected: "patio_table_2"},
		{name: "stripsOddRunes", value: "böoth#1", expected: "both1"},
		{name: "empty", value: "  ", expected: "unknown"},
		{name: "onlyOddRunes", value: "###", expected: "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seedIdentifier(tt.value); got != tt.expected {
				t.Errorf("seedIdentifier(%q) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestEnsureTableCreates(t *testing.T) {
	repo := NewMockTableRepo()
	s := tableSeed{Number: "Window-1", Capacity: 2, Room: "main"}

	if err := s.ensureTable(context.Background(), repo, apt.NewNoopLogger()); err != nil {
		t.Fatalf("ensureTable() unexpected error: %v", err)
	}

	tables, _ := repo.List(context.Background())
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	if tables[0].Number != "Window-1" || tables[0].Capacity != 2 || tables[0].Room != "main" {
		t.Errorf("created table = %+v", tables[0])
	}
	if tables[0].CreatedBy != "seed:bootstrap" {
		t.Errorf("CreatedBy = %q, want seed:bootstrap", tables[0].CreatedBy)
	}
}

func TestEnsureTableSkipsExisting(t *testing.T) {
	repo := NewMockTableRepo()
	existing := newTestTable("Window-1", 2)
	repo.AddTable(existing)

	s := tableSeed{Number: " Window-1 ", Capacity: 4}
	if err := s.ensureTable(context.Background(), repo, apt.NewNoopLogger()); err != nil {
		t.Fatalf("ensureTable() unexpected error: %v", err)
	}

	tables, _ := repo.List(context.Background())
	if len(tables) != 1 {
		t.Errorf("tables = %d, want 1 (existing table kept, no duplicate)", len(tables))
	}
}

func TestEnsureTableListFailure(t *testing.T) {
	repo := NewMockTableRepo()
	repo.ListFunc = func(ctx context.Context) ([]*Table, error) {
		return nil, errors.New("database error")
	}

	s := tableSeed{Number: "Window-1", Capacity: 2}
	if err := s.ensureTable(context.Background(), repo, apt.NewNoopLogger()); err == nil {
		t.Error("ensureTable() expected error when listing fails")
	}
}

func TestLoadTableSeedsMissingFile(t *testing.T) {
	if _, err := loadTableSeeds(embed.FS{}); err == nil {
		t.Error("loadTableSeeds() on an empty FS should return error")
	}
}

func TestApplyTableSeedsNilRepo(t *testing.T) {
	err := ApplyTableSeeds(context.Background(), nil, embed.FS{}, apt.NewNoopLogger())
	if err == nil {
		t.Error("ApplyTableSeeds() with nil repo should return error")
	}
}

func TestApplyTableSeedsRepoWithoutDatabase(t *testing.T) {
	// A plain mock exposes no MongoDB handle, so the seed tracker cannot be
	// built.
	err := ApplyTableSeeds(context.Background(), NewMockTableRepo(), embed.FS{}, apt.NewNoopLogger())
	if err == nil {
		t.Error("ApplyTableSeeds() without a mongo-backed repo should return error")
	}
}

func TestApplyDemoSeedsNilDB(t *testing.T) {
	repos := Repos{BookingRepo: NewMockBookingRepo(), TableRepo: NewMockTableRepo()}

	err := ApplyDemoSeeds(context.Background(), repos, nil, embed.FS{}, apt.NewNoopLogger())
	if err == nil {
		t.Error("ApplyDemoSeeds() with nil db should return error")
	}

	expectedMsg := "database is required for demo seeding"
	if err.Error() != expectedMsg {
		t.Errorf("ApplyDemoSeeds() error = %q, want %q", err.Error(), expectedMsg)
	}
}

func TestDemoSeedingFuncNilDB(t *testing.T) {
	repos := Repos{BookingRepo: NewMockBookingRepo(), TableRepo: NewMockTableRepo()}

	fn := DemoSeedingFunc(context.Background(), repos, nil, embed.FS{}, nil)
	if fn == nil {
		t.Fatal("DemoSeedingFunc() returned nil function")
	}

	// The function should return nil (the actual error happens in background goroutine)
	if err := fn(context.Background()); err != nil {
		t.Errorf("DemoSeedingFunc() returned function should not return error, got: %v", err)
	}
}

func TestStopFunc(t *testing.T) {
	called := false
	fn := StopFunc(func() { called = true })

	if err := fn(context.Background()); err != nil {
		t.Errorf("StopFunc() = %v, want nil", err)
	}
	if !called {
		t.Error("StopFunc() did not invoke the cancel function")
	}

	if err := StopFunc(nil)(context.Background()); err != nil {
		t.Errorf("StopFunc(nil) = %v, want nil", err)
	}
}
