package models

// Rating is a single user's score for a book, 1..5.
type Rating struct {
	ID     int64
	UserID int64
	BookID int64
	Value  int
}
