package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaldesk-backend/internal/domain"
)

func TestCustomerRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	t.Run("CreateAssignsID", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO customers").
			WithArgs(sqlmock.AnyArg(), "Ada", "555-0100", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c := &domain.Customer{Name: "Ada", Phone: "555-0100"}
		require.NoError(t, repo.Create(ctx, c))
		assert.NotEmpty(t, c.ID)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, phone FROM customers WHERE id").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})

	t.Run("SearchEscapesPattern", func(t *testing.T) {
		mock.ExpectQuery("FROM customers WHERE name ILIKE").
			WithArgs(`%50\%%`, int32(20)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone"}).
				AddRow("c1", "50% Rentals", "555-0101"))

		got, err := repo.Search(ctx, " 50% ", 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "50% Rentals", got[0].Name)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepository_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStaffRepository(db)

	mock.ExpectQuery("FROM staff WHERE lower\\(email\\)").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "name", "email", "password_hash", "is_super_admin"}).
			AddRow("s1", "b1", "Ada", "Ada@example.com", "hash", true))
	mock.ExpectQuery("FROM staff WHERE id").
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	st, err := repo.GetByEmail(context.Background(), "  Ada@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)
	assert.True(t, st.IsSuperAdmin)

	_, err = repo.GetByID(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrStaffNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBranchRepository(db)
	cols := []string{"id", "name", "alert_email", "tax_enabled", "tax_rate_percent", "tax_fixed_cents", "tax_inclusive"}

	mock.ExpectQuery("FROM branches WHERE id").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "North", "north@example.com", true, "8.25", int64(0), false))
	mock.ExpectQuery("FROM branches WHERE id").
		WithArgs("b9").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM branches ORDER BY name").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b1", "North", "", false, "0", int64(0), false).
			AddRow("b2", "South", "", true, "5", int64(0), true))

	b, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, b.Tax.Enabled)
	assert.True(t, decimal.RequireFromString("8.25").Equal(b.Tax.RatePercent))

	_, err = repo.GetByID(context.Background(), "b9")
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}
