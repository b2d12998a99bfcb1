package models

// CreatedDateLayout is the ISO-8601 UTC layout stored in posts.createdDate.
const CreatedDateLayout = "2006-01-02T15:04:05.000Z"

// Post represents a blog post in the database.
type Post struct {
	ID          int64  `db:"id"`
	CreatedDate string `db:"createdDate"`
	Title       string `db:"title"`
	Body        string `db:"body"`
	AuthorID    int64  `db:"authorid"`
}

// PostWithAuthor is a post joined with its author's username.
type PostWithAuthor struct {
	Post
	Username string `db:"username"`
}

// PostRequest is the create/edit post form. Missing fields bind as empty strings.
type PostRequest struct {
	Title string `form:"title" json:"title" validate:"required"`
	Body  string `form:"body" json:"body" validate:"required"`
}
