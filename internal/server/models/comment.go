package models

import "time"

// Comment belongs to exactly one note. Username is a display snapshot taken
// when the comment was written and is not kept in sync afterwards.
type Comment struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"noteId"`
	UserID      string    `json:"user"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	CommentedAt time.Time `json:"commentedAt"`
}
