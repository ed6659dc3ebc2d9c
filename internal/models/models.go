package models

import (
	"time"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"fullName"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the projection returned by login. It never carries the digest.
type PublicUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, FullName: u.FullName, Username: u.Username, Email: u.Email}
}

type LoginResult struct {
	User  PublicUser
	Token string
}

type Todo struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	Done      bool      `db:"done" json:"done"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TodoPatch carries the fields of a partial todo update. Nil means absent.
type TodoPatch struct {
	Title *string
	Done  *bool
}

func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Done == nil
}

type TimetableEntry struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"-"`
	Title      string    `db:"title" json:"title"`
	FilePath   string    `db:"file_path" json:"file_path"`
	Mime       string    `db:"mime" json:"mime"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

type PlannerCell struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

const (
	PlannerRows      = 3
	PlannerCols      = 3
	DefaultCellColor = "#ffffff"
)

type PlannerGrid [][]PlannerCell

// EmptyPlannerGrid is what a week looks like before its first save.
func EmptyPlannerGrid() PlannerGrid {
	grid := make(PlannerGrid, PlannerRows)
	for i := range grid {
		grid[i] = make([]PlannerCell, PlannerCols)
		for j := range grid[i] {
			grid[i][j] = PlannerCell{Text: "", Color: DefaultCellColor}
		}
	}
	return grid
}

type PlannerWeek struct {
	Week      string      `json:"week"`
	Data      PlannerGrid `json:"data"`
	UpdatedAt *time.Time  `json:"updated_at"`
}

const (
	WallKindQuote = "quote"
	WallKindImage = "image"
)

type WallItem struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Kind      string    `db:"kind" json:"kind"`
	Text      *string   `db:"text" json:"text"`
	Author    *string   `db:"author" json:"author"`
	Color     *string   `db:"color" json:"color"`
	FilePath  *string   `db:"file_path" json:"file_path"`
	Mime      *string   `db:"mime" json:"mime"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
