package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/datastore"
)

// BooksTable receives the exported records.
const BooksTable = "books"

// BooksSchema defines the SQL schema for the books table
const BooksSchema = `CREATE TABLE IF NOT EXISTS books (
	id TEXT,
	title TEXT,
	author TEXT,
	award TEXT,
	location TEXT,
	season TEXT,
	genre TEXT,
	image TEXT,
	summary TEXT,
	characters_age TEXT,
	characters TEXT,
	latitude REAL,
	longitude REAL
)`

// Rows converts books into column maps for a datastore.
func Rows(books []Book) []map[string]any {
	rows := make([]map[string]any, 0, len(books))
	for _, b := range books {
		row := map[string]any{
			"id":             b.ID.sqlValue(),
			"title":          b.Title.sqlValue(),
			"author":         b.Author.sqlValue(),
			"award":          b.Award.sqlValue(),
			"location":       b.Location.sqlValue(),
			"season":         b.Season.sqlValue(),
			"genre":          b.Genre.sqlValue(),
			"image":          b.Image.sqlValue(),
			"summary":        b.Summary.sqlValue(),
			"characters_age": b.CharactersAge.sqlValue(),
			"characters":     b.Characters.sqlValue(),
			"latitude":       nil,
			"longitude":      nil,
		}
		if b.Latitude != nil && b.Longitude != nil {
			row["latitude"] = *b.Latitude
			row["longitude"] = *b.Longitude
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteStore replaces the books table of store with books.
func WriteStore(ctx context.Context, store datastore.Store, books []Book) error {
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close datastore", "error", err)
		}
	}()

	if err := store.CreateTable(ctx, BooksSchema); err != nil {
		return err
	}
	if err := store.ReplaceAll(ctx, BooksTable, Rows(books)); err != nil {
		return err
	}
	slog.Info("Wrote books to datastore", "count", len(books))
	return nil
}
