package models

// AdminID is the only user allowed to manage posts.
const AdminID int64 = 1

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
}

// Post references its author by id; resolve it through the store.
type Post struct {
	ID       int64
	AuthorID int64
	Title    string
	Subtitle string
	Date     string
	Body     string
	ImgURL   string
}

type Comment struct {
	ID       int64
	PostID   int64
	AuthorID int64
	Text     string
}
