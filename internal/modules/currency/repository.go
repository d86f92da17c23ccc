package currency

import (
	"context"
	"database/sql"
)

// Repository defines read access to the currencies table.
type Repository interface {
	ListCurrencies(ctx context.Context) ([]*Currency, error)
}

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListCurrencies(ctx context.Context) ([]*Currency, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, symbol, value_in_fcfa, updated_at FROM currencies ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Currency
	for rows.Next() {
		c := &Currency{}
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.ValueInFCFA, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
