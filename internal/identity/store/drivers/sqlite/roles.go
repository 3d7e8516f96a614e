package sqlite

import (
	"context"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
)

type rolesRepo struct {
	q querier
}

const roleColumns = `id, name, description, permissions, created_at, updated_at`

func scanRole(row rowScanner) (domain.Role, error) {
	var (
		role  domain.Role
		name  string
		perms string
	)
	err := row.Scan(&role.ID, &name, &role.Description, &perms,
		&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, err
	}
	role.Name = domain.RoleName(name)
	role.Permissions = splitPermissions(perms)
	return role, nil
}

// Ensure inserts the role unless a row with that name already exists, then
// reads back the canonical row. Same race-safety contract as account types.
func (r *rolesRepo) Ensure(ctx context.Context, role domain.Role) (domain.Role, error) {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, permissions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		role.ID, string(role.Name), role.Description, joinPermissions(role.Permissions), now, now,
	)
	if err != nil {
		return domain.Role{}, err
	}
	return r.GetRoleByName(ctx, role.Name)
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ?`, id)
	role, err := scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = ?`, string(name))
	role, err := scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}
