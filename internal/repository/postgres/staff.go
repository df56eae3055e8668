package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/repository"
)

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, branch_id, name, email, password_hash, is_super_admin`

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1 AND deleted_on IS NULL`
	return scanStaff(r.db.QueryRowContext(ctx, query, id))
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE lower(email) = $1 AND deleted_on IS NULL`
	return scanStaff(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func scanStaff(s scanner) (*domain.Staff, error) {
	st := &domain.Staff{}
	err := s.Scan(&st.ID, &st.BranchID, &st.Name, &st.Email, &st.PasswordHash, &st.IsSuperAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, err
	}
	return st, nil
}
