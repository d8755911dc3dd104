// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Register the postgres SQL dialect.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // Register the sqlite3 SQL dialect.
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SQL dialects understood by NewModels and Migrate.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

const (
	booksTable  = "books"
	tracerName  = "github.com/aoideee/booknotes/internal/data"
	colID       = "id"
	colTitle    = "title"
	colAuthor   = "author"
	colISBN     = "isbn"
	colRating   = "rating"
	colNotes    = "notes"
	colDateRead = "date_read"
)

var bookColumns = []any{colID, colTitle, colAuthor, colISBN, colRating, colNotes, colDateRead}

// ErrRecordNotFound is returned when a query finds no matching row.
var ErrRecordNotFound = errors.New("record not found")

// BookStore is the persistence contract the web layer depends on.
// Update and Delete treat an unknown id as a no-op.
type BookStore interface {
	List(ctx context.Context, sort SortMode) ([]*Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Insert(ctx context.Context, book *Book) error
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id int64) error
}

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books BookStore // Handles all database operations for the books table
}

// NewModels constructs a Models value wired up to the given database handle.
// dialect is one of DialectPostgres or DialectSQLite.
func NewModels(db *sqlx.DB, dialect string) Models {
	return Models{
		Books: NewBookModel(db, dialect),
	}
}

// BookModel wraps a *sqlx.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB        *sqlx.DB
	builder   goqu.DialectWrapper
	returning bool // dialect supports INSERT ... RETURNING
	tracer    trace.Tracer
}

// NewBookModel returns a BookModel that builds its SQL for dialect.
func NewBookModel(db *sqlx.DB, dialect string) BookModel {
	return BookModel{
		DB:        db,
		builder:   goqu.Dialect(dialect),
		returning: dialect != DialectSQLite,
		tracer:    otel.Tracer(tracerName),
	}
}

// List returns every book ordered by sort. An empty table yields an empty slice.
func (m BookModel) List(ctx context.Context, sort SortMode) ([]*Book, error) {
	ctx, span := m.tracer.Start(ctx, "books.List", trace.WithAttributes(attribute.String("books.sort", string(sort))))
	defer span.End()

	query, args, err := m.builder.
		From(booksTable).
		Select(bookColumns...).
		Order(orderFor(sort)...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, failSpan(span, err)
	}

	books := []*Book{}
	if err := m.DB.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, failSpan(span, err)
	}

	span.SetAttributes(attribute.Int("books.count", len(books)))
	return books, nil
}

// orderFor translates a SortMode into ORDER BY expressions. id is always the
// final key so that rows with equal sort values come back in a stable order.
func orderFor(sort SortMode) []exp.OrderedExpression {
	switch sort {
	case SortRating:
		return []exp.OrderedExpression{
			goqu.C(colRating).Desc(),
			goqu.C(colDateRead).Desc(),
			goqu.C(colID).Desc(),
		}
	case SortTitle:
		return []exp.OrderedExpression{
			goqu.C(colTitle).Asc(),
			goqu.C(colID).Asc(),
		}
	default:
		return []exp.OrderedExpression{
			goqu.C(colDateRead).Desc(),
			goqu.C(colID).Desc(),
		}
	}
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, span := m.tracer.Start(ctx, "books.Get", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	query, args, err := m.builder.
		From(booksTable).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, failSpan(span, err)
	}

	var book Book
	err = m.DB.GetContext(ctx, &book, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, failSpan(span, err)
		}
	}
	return &book, nil
}

// Insert adds a new book record to the database. A nil DateRead is set to
// today before writing, and the database-assigned id is written back into book.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	ctx, span := m.tracer.Start(ctx, "books.Insert")
	defer span.End()

	if book.DateRead == nil {
		d := today()
		book.DateRead = &d
	}

	insert := m.builder.Insert(booksTable).Rows(bookRecord(book))

	if m.returning {
		query, args, err := insert.Returning(goqu.C(colID)).Prepared(true).ToSQL()
		if err != nil {
			return failSpan(span, err)
		}
		if err := m.DB.QueryRowxContext(ctx, query, args...).Scan(&book.ID); err != nil {
			return failSpan(span, err)
		}
	} else {
		query, args, err := insert.Prepared(true).ToSQL()
		if err != nil {
			return failSpan(span, err)
		}
		result, err := m.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return failSpan(span, err)
		}
		book.ID, err = result.LastInsertId()
		if err != nil {
			return failSpan(span, err)
		}
	}

	span.SetAttributes(attribute.Int64("book.id", book.ID))
	return nil
}

// Update overwrites every column of the row matching book.ID. Fields left
// nil are stored as NULL, except DateRead which defaults to today as in
// Insert. An id with no matching row is not an error.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	ctx, span := m.tracer.Start(ctx, "books.Update", trace.WithAttributes(attribute.Int64("book.id", book.ID)))
	defer span.End()

	if book.DateRead == nil {
		d := today()
		book.DateRead = &d
	}

	query, args, err := m.builder.
		Update(booksTable).
		Set(bookRecord(book)).
		Where(goqu.C(colID).Eq(book.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return failSpan(span, err)
	}

	result, err := m.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return failSpan(span, err)
	}
	if n, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", n))
	}
	return nil
}

// Delete removes the book with the given id. Deleting a missing book is not an error.
func (m BookModel) Delete(ctx context.Context, id int64) error {
	ctx, span := m.tracer.Start(ctx, "books.Delete", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	query, args, err := m.builder.
		Delete(booksTable).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return failSpan(span, err)
	}

	if _, err := m.DB.ExecContext(ctx, query, args...); err != nil {
		return failSpan(span, err)
	}
	return nil
}

// bookRecord maps the writable columns of book onto a goqu record.
func bookRecord(book *Book) goqu.Record {
	return goqu.Record{
		colTitle:    book.Title,
		colAuthor:   book.Author,
		colISBN:     valueOrNil(book.ISBN),
		colRating:   valueOrNil(book.Rating),
		colNotes:    valueOrNil(book.Notes),
		colDateRead: valueOrNil(book.DateRead),
	}
}

// valueOrNil dereferences p, turning a nil pointer into an untyped nil so
// the query builder emits NULL.
func valueOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
