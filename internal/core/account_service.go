package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountService reads the trading-partner directory. The directory is owned
// by the legacy bookkeeping system; this engine never writes to it outside of
// seeding.
type AccountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) *AccountService {
	return &AccountService{pool: pool}
}

// ListAccounts returns all accounts ordered by name.
func (s *AccountService) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, legacy_pcode, address, created_at
		FROM accounts
		ORDER BY name
	`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.LegacyPCode, &a.Address, &a.CreatedAt); err != nil {
			return nil, storeErr("scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate account rows", err)
	}
	return accounts, nil
}

// GetAccount returns one account by id.
func (s *AccountService) GetAccount(ctx context.Context, id int) (*Account, error) {
	a := &Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, legacy_pcode, address, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.LegacyPCode, &a.Address, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf("account %d not found", id)
		}
		return nil, storeErr("get account", err)
	}
	return a, nil
}
