// Package forum holds thin read models of the backend's forum responses.
// The gateway renders them; it never owns or persists forum data.
package forum

import "time"

// Category is one discussion board.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	PostCount   int    `json:"post_count"`
	Order       int    `json:"order"`
}

// Author is the public identity attached to posts and replies.
type Author struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
}

// Name returns the display name when set, else the username.
func (a Author) Name() string {
	if a.DisplayName != nil && *a.DisplayName != "" {
		return *a.DisplayName
	}
	return a.Username
}

// Post is a forum post as returned by list, detail and search endpoints.
type Post struct {
	PostID       string     `json:"post_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Author       Author     `json:"author"`
	Category     *Category  `json:"category,omitempty"`
	Tags         string     `json:"tags"`
	IsPinned     bool       `json:"is_pinned"`
	IsLocked     bool       `json:"is_locked"`
	ViewCount    int        `json:"view_count"`
	LikeCount    int        `json:"like_count"`
	ReplyCount   int        `json:"reply_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// Reply is a response to a post, optionally nested under another reply.
type Reply struct {
	ReplyID       string    `json:"reply_id"`
	Content       string    `json:"content"`
	Author        Author    `json:"author"`
	ParentReply   *string   `json:"parent_reply"`
	IsNestedReply bool      `json:"is_nested_reply"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Pagination describes one page of a post listing.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// CategoryPage is a category with one page of its posts.
type CategoryPage struct {
	Category   Category   `json:"category"`
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Query      string     `json:"query"`
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// PostDetail is a post with its replies in creation order.
type PostDetail struct {
	Post       Post    `json:"post"`
	Replies    []Reply `json:"replies"`
	ReplyCount int     `json:"reply_count"`
}

// LikeResult reports the toggled like state.
type LikeResult struct {
	Message   string `json:"message"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// ListOptions narrows a post listing.
type ListOptions struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

// NewPost is the create-post form.
type NewPost struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategorySlug string `json:"category_slug"`
	Tags         string `json:"tags,omitempty"`
}

// NewReply is the reply form.
type NewReply struct {
	Content       string  `json:"content"`
	ParentReplyID *string `json:"parent_reply_id,omitempty"`
}

// APIStatus is the backend's status probe answer.
type APIStatus struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
}
