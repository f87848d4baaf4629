package casdb

import (
	"context"
	"database/sql"
	"errors"
)

// Query namespaces all SQL touching the cas tables, mirroring the
// generated-queries layout: every method takes its DBTX explicitly so
// callers can run inside a transaction.
var Query = queries{}

type queries struct{}

type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	Attributes   string
}

type CreateUserParams struct {
	Login        string
	PasswordHash []byte
	Attributes   string
}

func (queries) CreateUser(ctx context.Context, db DBTX, params CreateUserParams) (User, error) {
	attrs := params.Attributes
	if attrs == "" {
		attrs = "{}"
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, attributes) VALUES (?, ?, ?)`,
		params.Login, params.PasswordHash, attrs,
	)
	if err != nil {
		return User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           id,
		Login:        params.Login,
		PasswordHash: params.PasswordHash,
		Attributes:   attrs,
	}, nil
}

func (queries) GetUser(ctx context.Context, db DBTX, login string) (User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, attributes FROM users WHERE login = ?`,
		login,
	)

	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Attributes); err != nil {
		return User{}, err
	}
	return u, nil
}

func (queries) SetOption(ctx context.Context, db DBTX, name, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO options (name, value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		name, value,
	)
	return err
}

func (queries) GetOption(ctx context.Context, db DBTX, name string) (string, bool, error) {
	row := db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, name)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}
