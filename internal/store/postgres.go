package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rescuelink/internal/utils"
	"rescuelink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const documentTableName = "rescuelink.documents"

const documentTableDDL = `
CREATE SCHEMA IF NOT EXISTS rescuelink;
CREATE TABLE IF NOT EXISTS rescuelink.documents (
	id         TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	revision   BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type documentRow struct {
	ID        string    `db:"id"`
	Body      []byte    `db:"body"`
	Revision  int64     `db:"revision"`
	UpdatedAt time.Time `db:"updated_at"`
}

var documentColumns = utils.StructTagValues(documentRow{})

// PgxPool is the subset of *pgxpool.Pool used by the Postgres backend.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresBackend stores the document as one JSONB row and uses the revision
// column as an optimistic concurrency token.
type PostgresBackend struct {
	pool       PgxPool
	documentID string
}

func NewPostgresBackend(pool PgxPool, documentID string) *PostgresBackend {
	return &PostgresBackend{pool: pool, documentID: documentID}
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

// EnsureSchema creates the documents table when it does not exist yet.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, documentTableDDL)
	return utils.WrapError(err, "failed to create documents table")
}

func (b *PostgresBackend) Load(ctx context.Context) (*types.Document, error) {
	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"id": b.documentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var row documentRow
	err = pgxscan.Get(ctx, b.pool, &row, query, args...)
	if pgxscan.NotFound(err) {
		return nil, types.ErrDocumentNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", b.documentID, err)
	}

	doc := new(types.Document)
	if err := json.Unmarshal(row.Body, doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", b.documentID, err)
	}
	doc.Revision = row.Revision

	return doc, nil
}

func (b *PostgresBackend) Save(ctx context.Context, doc *types.Document) error {
	next := *doc
	next.Revision = doc.Revision + 1

	body, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	now := time.Now().UTC()

	var builder interface {
		ToSql() (string, []any, error)
	}
	if doc.Revision == 0 {
		builder = psql().Insert(documentTableName).
			Columns("id", "body", "revision", "updated_at").
			Values(b.documentID, body, next.Revision, now).
			Suffix("ON CONFLICT (id) DO NOTHING")
	} else {
		builder = psql().Update(documentTableName).
			Set("body", body).
			Set("revision", next.Revision).
			Set("updated_at", now).
			Where(sq.Eq{"id": b.documentID, "revision": doc.Revision})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate save document query: %w", err)
	}

	tag, err := b.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", b.documentID, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrRevisionConflict
	}

	doc.Revision = next.Revision
	return nil
}
