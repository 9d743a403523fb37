package storage

// Bookmark is a stored bookmark. OwnerID references User.ID.
type Bookmark struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	OwnerID string `json:"owner"`
}

// User is the owner of bookmarks. Only its id and username are known here.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
