package models

import "strings"

type RegisterRequest struct {
	FullName string  `json:"fullName" validate:"required,max=255"`
	Username string  `json:"username" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password string  `json:"password" validate:"required"`
}

// Normalize trims the identity fields. The password is left untouched.
func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = NullIfBlank(r.Phone)
}

type LoginRequest struct {
	UserOrEmail string `json:"userOrEmail" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type CreateTodoRequest struct {
	UserID ID     `json:"userId" validate:"required,gt=0"`
	Title  string `json:"title" validate:"required,max=255"`
}

func (r *CreateTodoRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

type UpdateTodoRequest struct {
	UserID ID             `json:"userId" validate:"required,gt=0"`
	Title  OptionalString `json:"title"`
	Done   Flag           `json:"done"`
}

// Patch keeps only the fields that are present and usable: a non-blank
// title and a recognised done value.
func (r UpdateTodoRequest) Patch() TodoPatch {
	var p TodoPatch
	if r.Title.Set {
		if t := strings.TrimSpace(r.Title.Value); t != "" {
			p.Title = &t
		}
	}
	if r.Done.Set {
		d := r.Done.Value
		p.Done = &d
	}
	return p
}

type SavePlannerRequest struct {
	UserID ID          `json:"userId" validate:"required,gt=0"`
	Week   string      `json:"week" validate:"required,max=32"`
	Data   PlannerGrid `json:"data" validate:"required,len=3,dive,len=3"`
}

func (r *SavePlannerRequest) Normalize() {
	r.Week = strings.TrimSpace(r.Week)
	for i := range r.Data {
		for j := range r.Data[i] {
			if strings.TrimSpace(r.Data[i][j].Color) == "" {
				r.Data[i][j].Color = DefaultCellColor
			}
		}
	}
}

type CreateQuoteRequest struct {
	UserID ID      `json:"userId" validate:"required,gt=0"`
	Text   string  `json:"text" validate:"required"`
	Author *string `json:"author" validate:"omitempty,max=255"`
	Color  *string `json:"color" validate:"omitempty,max=32"`
}

func (r *CreateQuoteRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.Author = NullIfBlank(r.Author)
	r.Color = NullIfBlank(r.Color)
}
