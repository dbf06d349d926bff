package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements sitecontent.Repository using PostgreSQL. Documents
// are stored as jsonb rows of a single table keyed by (collection, id).
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrations returns the goose migrations that create the document table.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies pending migrations. It needs the pool the repository was
// built with; goose runs over database/sql.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("migrate requires a repository created with NewWithPool")
	}
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return r.handlePostgresError("migrate", err)
	}
	for _, res := range results {
		slog.Info("Applied migration", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("document already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "22P02", "22032": // invalid_text_representation, invalid_json_text
			return fmt.Errorf("document body is not valid JSON")
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return sitecontent.ErrDocumentNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateDocument(ctx context.Context, doc *sitecontent.Document) error {
	query := `
		INSERT INTO document (id, collection, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, doc.ID, doc.Collection, []byte(doc.Body), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create document", err)
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, collection string, id uuid.UUID) (*sitecontent.Document, error) {
	query := `
		SELECT id, collection, body, created_at, updated_at
		FROM document WHERE collection = $1 AND id = $2`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, collection, id))
	if err != nil {
		return nil, r.handlePostgresError("get document", err)
	}
	return doc, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *sitecontent.Document) error {
	query := `
		UPDATE document SET body = $3, updated_at = $4
		WHERE collection = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, doc.Collection, doc.ID, []byte(doc.Body), doc.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrDocumentNotFound
	}
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, collection string, id uuid.UUID) error {
	query := `DELETE FROM document WHERE collection = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, collection, id)
	if err != nil {
		return r.handlePostgresError("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrDocumentNotFound
	}
	return nil
}

func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]*sitecontent.Document, error) {
	query := `
		SELECT id, collection, body, created_at, updated_at
		FROM document WHERE collection = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}
	defer rows.Close()

	var docs []*sitecontent.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (*sitecontent.Document, error) {
	var doc sitecontent.Document
	var body []byte
	if err := row.Scan(&doc.ID, &doc.Collection, &body, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Body = body
	return &doc, nil
}
