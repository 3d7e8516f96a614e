package sqlite

import (
	"context"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
)

type accountTypesRepo struct {
	q querier
}

const accountTypeColumns = `id, name, description, active, max_users, created_at, updated_at`

func scanAccountType(row rowScanner) (domain.AccountType, error) {
	var t domain.AccountType
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Active, &t.MaxUsers,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.AccountType{}, err
	}
	return t, nil
}

// Ensure inserts the type unless a row with that name already exists, then
// reads back the canonical row. The unique constraint on name arbitrates
// concurrent first calls.
func (r *accountTypesRepo) Ensure(ctx context.Context, t domain.AccountType) (domain.AccountType, error) {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO account_types (id, name, description, active, max_users, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		t.ID, t.Name, t.Description, t.Active, t.MaxUsers, now, now,
	)
	if err != nil {
		return domain.AccountType{}, err
	}
	return r.GetAccountTypeByName(ctx, t.Name)
}

func (r *accountTypesRepo) GetAccountTypeByName(ctx context.Context, name string) (domain.AccountType, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountTypeColumns+` FROM account_types WHERE name = ?`, name)
	t, err := scanAccountType(row)
	if err != nil {
		return domain.AccountType{}, mapNotFound(err)
	}
	return t, nil
}
