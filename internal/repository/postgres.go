package repository

import (
	"achievify/internal/models"
	"context"

	"github.com/jmoiron/sqlx"
)

const (
	todoColumns      = "id, user_id, title, done, created_at, updated_at"
	timetableColumns = "id, user_id, title, file_path, mime, uploaded_at"
	wallColumns      = "id, user_id, kind, text, author, color, file_path, mime, created_at"
)

// PostgresStore implements every store the services need on one pool.
type PostgresStore struct {
	db         *sqlx.DB
	todos      ownedTable[models.Todo]
	timetables ownedTable[models.TimetableEntry]
	wall       ownedTable[models.WallItem]
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		todos: ownedTable[models.Todo]{
			db:      db,
			table:   "todos",
			columns: todoColumns,
			orderBy: "created_at DESC, id DESC",
			touch:   "updated_at",
		},
		timetables: ownedTable[models.TimetableEntry]{
			db:      db,
			table:   "timetables",
			columns: timetableColumns,
			orderBy: "uploaded_at DESC, id DESC",
			blob:    "file_path",
		},
		wall: ownedTable[models.WallItem]{
			db:      db,
			table:   "wall_items",
			columns: wallColumns,
			orderBy: "created_at DESC, id DESC",
			blob:    "file_path",
		},
	}
}

// GetDB returns the underlying pool.
func (s *PostgresStore) GetDB() *sqlx.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
