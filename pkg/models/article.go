package models

// Article is one entry of the tech-watch archive
type Article struct {
	Title string `db:"title" json:"title"`
	Link  string `db:"link" json:"link"`
	Date  string `db:"date" json:"date"`
}
