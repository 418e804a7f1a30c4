package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/models"
)

// Archive is the query side of the article archive.
type Archive interface {
	Recent(ctx context.Context, n int) ([]models.Article, error)
	Search(ctx context.Context, term string, n int) ([]models.Article, error)
}

// SQLiteArchive reads articles the scraper stores in a SQLite database.
type SQLiteArchive struct {
	db *sqlx.DB
}

const articlesSchema = `CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	link TEXT NOT NULL UNIQUE,
	date TEXT NOT NULL
);`

// OpenArchive connects to the archive at path and ensures the table exists.
func OpenArchive(path string) (*SQLiteArchive, error) {
	const op = "archive.open"

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.E(errors.KindExternal, op, fmt.Errorf("connect %s: %w", path, err))
	}
	if _, err := db.Exec(articlesSchema); err != nil {
		db.Close()
		return nil, errors.E(errors.KindExternal, op, fmt.Errorf("create articles table: %w", err))
	}
	return &SQLiteArchive{db: db}, nil
}

// Close closes the database handle
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// Add inserts an article, ignoring links already archived. It reports whether a row was written.
func (a *SQLiteArchive) Add(ctx context.Context, art models.Article) (bool, error) {
	res, err := a.db.NamedExecContext(ctx,
		`INSERT OR IGNORE INTO articles (title, link, date) VALUES (:title, :link, :date)`, art)
	if err != nil {
		return false, errors.E(errors.KindExternal, "archive.add", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.E(errors.KindExternal, "archive.add", err)
	}
	return n > 0, nil
}

// Recent returns the n newest articles.
func (a *SQLiteArchive) Recent(ctx context.Context, n int) ([]models.Article, error) {
	var articles []models.Article
	err := a.db.SelectContext(ctx, &articles,
		`SELECT title, link, date FROM articles ORDER BY date DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.E(errors.KindExternal, "archive.recent", err)
	}
	return articles, nil
}

// Search returns up to n articles whose title contains term, newest first.
func (a *SQLiteArchive) Search(ctx context.Context, term string, n int) ([]models.Article, error) {
	var articles []models.Article
	err := a.db.SelectContext(ctx, &articles,
		`SELECT title, link, date FROM articles WHERE title LIKE ? ORDER BY date DESC, id DESC LIMIT ?`,
		"%"+term+"%", n)
	if err != nil {
		return nil, errors.E(errors.KindExternal, "archive.search", err)
	}
	return articles, nil
}
