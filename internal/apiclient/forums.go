package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mhsn/forumweb/internal/domain/forum"
)

func listQuery(opts forum.ListOptions) url.Values {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	return q
}

// Categories lists the active boards in display order.
func (c *Client) Categories(ctx context.Context) ([]forum.Category, error) {
	var out struct {
		Categories []forum.Category `json:"categories"`
	}
	err := c.do(ctx, http.MethodGet, "/forums/categories/", nil, nil, &out)
	return out.Categories, err
}

// CategoryPosts returns one page of a board; Search filters within it.
func (c *Client) CategoryPosts(ctx context.Context, slug string, opts forum.ListOptions) (forum.CategoryPage, error) {
	var out forum.CategoryPage
	opts.Category = ""
	path := "/forums/categories/" + url.PathEscape(slug) + "/posts/"
	err := c.do(ctx, http.MethodGet, path, listQuery(opts), nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, in forum.NewPost) (forum.Post, error) {
	var out struct {
		Post forum.Post `json:"post"`
	}
	err := c.do(ctx, http.MethodPost, "/forums/posts/", nil, in, &out)
	return out.Post, err
}

func (c *Client) PostDetail(ctx context.Context, id string) (forum.PostDetail, error) {
	var out forum.PostDetail
	err := c.do(ctx, http.MethodGet, "/forums/posts/"+url.PathEscape(id)+"/", nil, nil, &out)
	return out, err
}

func (c *Client) Reply(ctx context.Context, postID string, in forum.NewReply) (forum.Reply, error) {
	var out struct {
		Reply forum.Reply `json:"reply"`
	}
	err := c.do(ctx, http.MethodPost, "/forums/posts/"+url.PathEscape(postID)+"/replies/", nil, in, &out)
	return out.Reply, err
}

// LikePost toggles the caller's like on a post.
func (c *Client) LikePost(ctx context.Context, id string) (forum.LikeResult, error) {
	var out forum.LikeResult
	err := c.do(ctx, http.MethodPost, "/forums/posts/"+url.PathEscape(id)+"/like/", nil, nil, &out)
	return out, err
}

// LikeReply toggles the caller's like on a reply.
func (c *Client) LikeReply(ctx context.Context, id string) (forum.LikeResult, error) {
	var out forum.LikeResult
	err := c.do(ctx, http.MethodPost, "/forums/replies/"+url.PathEscape(id)+"/like/", nil, nil, &out)
	return out, err
}

// Search looks across all boards; Category narrows to one.
func (c *Client) Search(ctx context.Context, query string, opts forum.ListOptions) (forum.SearchPage, error) {
	var out forum.SearchPage
	q := listQuery(opts)
	q.Del("search")
	q.Set("q", query)
	err := c.do(ctx, http.MethodGet, "/forums/search/", q, nil, &out)
	return out, err
}
