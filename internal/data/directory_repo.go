package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/target/content-portal/internal/data/pgxutil"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.Directory = (*DirectoryRepo)(nil)

const accountColumns = `identity, credential_secret, display_name, role, approved, allowed_pages, registered_at`

// accountRow mirrors the accounts table with driver-native types.
type accountRow struct {
	Identity         string    `db:"identity"`
	CredentialSecret string    `db:"credential_secret"`
	DisplayName      string    `db:"display_name"`
	Role             string    `db:"role"`
	Approved         bool      `db:"approved"`
	AllowedPages     []string  `db:"allowed_pages"`
	RegisteredAt     time.Time `db:"registered_at"`
}

func (r accountRow) toDomain() domainauth.Account {
	pages := make([]domainauth.PageID, 0, len(r.AllowedPages))
	for _, p := range r.AllowedPages {
		pages = append(pages, domainauth.PageID(p))
	}
	return domainauth.Account{
		Identity:         r.Identity,
		CredentialSecret: r.CredentialSecret,
		DisplayName:      r.DisplayName,
		Role:             domainauth.Role(r.Role),
		Approved:         r.Approved,
		AllowedPages:     pages,
		RegisteredAt:     r.RegisteredAt.UTC(),
	}
}

// DirectoryRepo is the Postgres-backed User Directory.
type DirectoryRepo struct {
	DB           *sql.DB
	clock Clock
}

// NewDirectoryRepo creates a new DirectoryRepo with real time provider.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{DB: db, clock: systemClock{}}
}

// NewDirectoryRepoWithClock creates a DirectoryRepo that stamps registrations with clock.
func NewDirectoryRepoWithClock(db *sql.DB, clock Clock) *DirectoryRepo {
	return &DirectoryRepo{DB: db, clock: clock}
}

// Lookup returns the account for identity.
func (r *DirectoryRepo) Lookup(ctx context.Context, identity string) (domainauth.Account, error) {
	key := domainauth.NormalizeIdentity(identity)
	var row accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE identity = $1`, key)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[accountRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Account{}, ErrAccountNotFound
		}
		return domainauth.Account{}, unavailable("lookup account", err)
	}
	return row.toDomain(), nil
}

// Upsert creates the account when absent or merges the provided fields.
func (r *DirectoryRepo) Upsert(
	ctx context.Context,
	identity string,
	fields domainauth.AccountFields,
) (domainauth.Account, error) {
	key := domainauth.NormalizeIdentity(identity)
	if fields.IsCreate() {
		return r.insert(ctx, key, fields)
	}

	row, err := r.update(ctx, key, fields)
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domainauth.Account{}, unavailable("update account", err)
	}
	if !fields.IsComplete() {
		return domainauth.Account{}, domainauth.ErrIncompleteAccount
	}
	return r.insert(ctx, key, fields)
}

func (r *DirectoryRepo) insert(
	ctx context.Context,
	key string,
	fields domainauth.AccountFields,
) (domainauth.Account, error) {
	acc := fields.Apply(domainauth.Account{Identity: key})
	if fields.RegisteredAt == nil {
		acc.RegisteredAt = r.clock.Now().UTC()
	}
	var row accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO accounts (`+accountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+accountColumns,
			key,
			acc.CredentialSecret,
			acc.DisplayName,
			string(acc.Role),
			acc.Approved,
			pageStrings(acc.AllowedPages),
			acc.RegisteredAt,
		)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[accountRow])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domainauth.Account{}, ErrDuplicateIdentity
		}
		return domainauth.Account{}, unavailable("insert account", err)
	}
	return row.toDomain(), nil
}

// update merges non-nil fields; NULL parameters keep the stored column.
func (r *DirectoryRepo) update(ctx context.Context, key string, fields domainauth.AccountFields) (accountRow, error) {
	var role *string
	if fields.Role != nil {
		s := string(*fields.Role)
		role = &s
	}
	var pages []string
	if fields.AllowedPages != nil {
		pages = pageStrings(*fields.AllowedPages)
	}
	var row accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE accounts SET
				credential_secret = COALESCE($2, credential_secret),
				display_name      = COALESCE($3, display_name),
				role              = COALESCE($4, role),
				approved          = COALESCE($5, approved),
				allowed_pages     = COALESCE($6::text[], allowed_pages),
				registered_at     = COALESCE($7, registered_at)
			WHERE identity = $1
			RETURNING `+accountColumns,
			key,
			fields.CredentialSecret,
			fields.DisplayName,
			role,
			fields.Approved,
			pages,
			fields.RegisteredAt,
		)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[accountRow])
		return err
	})
	return row, err
}

// ListByRole returns accounts with role in registration order.
func (r *DirectoryRepo) ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Account, error) {
	var rowsOut []accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY seq`, string(role))
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[accountRow])
		return err
	})
	if err != nil {
		return nil, unavailable("list accounts", err)
	}
	out := make([]domainauth.Account, 0, len(rowsOut))
	for _, row := range rowsOut {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// pageStrings returns a non-nil slice so an empty grant is stored as '{}', not NULL.
func pageStrings(pages []domainauth.PageID) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, string(p))
	}
	return out
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainauth.ErrDirectoryUnavailable, op, err)
}
