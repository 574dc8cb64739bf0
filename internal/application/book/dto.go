package book

import (
	"github.com/xiebiao/library/internal/domain/book"
)

const timeLayout = "2006-01-02 15:04:05"

// BookResponse 图书响应DTO
type BookResponse struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	PublishYear     int    `json:"publishYear"`
	Copies          int    `json:"copies"`
	AvailableCopies int    `json:"availableCopies"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// NewBookResponse 领域实体 → 响应DTO
func NewBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Category:        b.Category,
		PublishYear:     b.PublishYear,
		Copies:          b.Copies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt.Format(timeLayout),
		UpdatedAt:       b.UpdatedAt.Format(timeLayout),
	}
}
