package models

// Book is a catalog entry. Dataset-seeded rows carry the attributes imported
// from the source dump; ImageURL points at the cover object when one exists.
type Book struct {
	ID              int64
	Title           string
	Authors         string
	ISBN            string
	PublicationYear int
	ImageURL        string
	Genre           string
}
