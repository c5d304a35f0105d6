package service

import (
	"context"
	"testing"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

func TestBudgetValidator_Validate(t *testing.T) {
	tests := []struct {
		name          string
		budgetTotal   *int64
		spending      int64
		proposed      int64
		wantValid     bool
		wantNotSet    bool
		wantShortfall int64
	}{
		{
			name:        "no budget configured passes",
			budgetTotal: nil,
			spending:    50000,
			proposed:    4000,
			wantValid:   true,
			wantNotSet:  true,
		},
		{
			name:        "zero budget treated as not set",
			budgetTotal: int64Ptr(0),
			spending:    0,
			proposed:    4000,
			wantValid:   true,
			wantNotSet:  true,
		},
		{
			name:        "within budget",
			budgetTotal: int64Ptr(10000),
			spending:    0,
			proposed:    4000,
			wantValid:   true,
		},
		{
			name:        "exactly exhausts budget",
			budgetTotal: int64Ptr(10000),
			spending:    6000,
			proposed:    4000,
			wantValid:   true,
		},
		{
			name:          "exceeds budget with shortfall",
			budgetTotal:   int64Ptr(10000),
			spending:      9000,
			proposed:      2000,
			wantValid:     false,
			wantShortfall: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &mockProjectRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Project, error) {
					return &entity.Project{ID: id, BudgetTotal: tt.budgetTotal, ActualSpending: tt.spending}, nil
				},
			}
			validator := NewBudgetValidator(projects, &mockPhaseRepo{}, &mockCategoryRepo{}, &mockLogger{})

			result, err := validator.Validate(context.Background(), ledger.ProjectScope(1), tt.proposed)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if result.IsValid != tt.wantValid {
				t.Errorf("Validate() IsValid = %v, want %v", result.IsValid, tt.wantValid)
			}
			if result.BudgetNotSet != tt.wantNotSet {
				t.Errorf("Validate() BudgetNotSet = %v, want %v", result.BudgetNotSet, tt.wantNotSet)
			}
			if result.Shortfall != tt.wantShortfall {
				t.Errorf("Validate() Shortfall = %v, want %v", result.Shortfall, tt.wantShortfall)
			}
		})
	}
}

func TestBudgetValidator_Validate_ScopeNotFound(t *testing.T) {
	projects := &mockProjectRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Project, error) {
			return nil, nil
		},
	}
	validator := NewBudgetValidator(projects, &mockPhaseRepo{}, &mockCategoryRepo{}, &mockLogger{})

	_, err := validator.Validate(context.Background(), ledger.ProjectScope(99), 100)
	if err == nil {
		t.Fatal("Validate() expected not-found error")
	}
	if _, ok := err.(*ledger.NotFoundError); !ok {
		t.Errorf("Validate() error = %T, want *ledger.NotFoundError", err)
	}
}

func TestBudgetValidator_ValidateAll(t *testing.T) {
	// Phase budget is exhausted, project budget is fine: the phase failure wins.
	projects := &mockProjectRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Project, error) {
			return &entity.Project{ID: id, BudgetTotal: int64Ptr(1000000), ActualSpending: 0}, nil
		},
	}
	phases := &mockPhaseRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Phase, error) {
			return &entity.Phase{ID: id, ProjectID: 1, BudgetTotal: int64Ptr(10000), ActualSpending: 9000}, nil
		},
	}
	validator := NewBudgetValidator(projects, phases, &mockCategoryRepo{}, &mockLogger{})

	scopes := []ledger.ScopeRef{ledger.PhaseScope(2), ledger.ProjectScope(1)}
	result, err := validator.ValidateAll(context.Background(), scopes, 2000)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}

	if result.IsValid {
		t.Error("ValidateAll() IsValid = true, want failing phase validation")
	}
	if result.Scope.Kind != ledger.ScopePhase {
		t.Errorf("ValidateAll() failing scope = %s, want phase", result.Scope.Kind)
	}
	if result.Shortfall != 1000 {
		t.Errorf("ValidateAll() Shortfall = %d, want 1000", result.Shortfall)
	}
}

func TestBudgetValidator_ValidateAll_AllPass(t *testing.T) {
	projects := &mockProjectRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Project, error) {
			return &entity.Project{ID: id, BudgetTotal: int64Ptr(1000000)}, nil
		},
	}
	phases := &mockPhaseRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Phase, error) {
			return &entity.Phase{ID: id, BudgetTotal: int64Ptr(50000)}, nil
		},
	}
	validator := NewBudgetValidator(projects, phases, &mockCategoryRepo{}, &mockLogger{})

	scopes := []ledger.ScopeRef{ledger.PhaseScope(2), ledger.ProjectScope(1)}
	result, err := validator.ValidateAll(context.Background(), scopes, 4000)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}

	if !result.IsValid {
		t.Error("ValidateAll() IsValid = false, want pass")
	}
	// The first (most specific) scope's validation is returned
	if result.Scope.Kind != ledger.ScopePhase {
		t.Errorf("ValidateAll() primary scope = %s, want phase", result.Scope.Kind)
	}
}
