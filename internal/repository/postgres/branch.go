package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/repository"
)

type branchRepository struct {
	db *sql.DB
}

func NewBranchRepository(db *sql.DB) repository.BranchRepository {
	return &branchRepository{db: db}
}

const branchColumns = `id, name, alert_email, tax_enabled, tax_rate_percent, tax_fixed_cents, tax_inclusive`

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	b, err := scanBranch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches := []domain.Branch{}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, *b)
	}
	return branches, rows.Err()
}

func scanBranch(s scanner) (*domain.Branch, error) {
	b := &domain.Branch{}
	err := s.Scan(&b.ID, &b.Name, &b.AlertEmail,
		&b.Tax.Enabled, &b.Tax.RatePercent, &b.Tax.FixedAmountCents, &b.Tax.Inclusive)
	if err != nil {
		return nil, err
	}
	return b, nil
}
