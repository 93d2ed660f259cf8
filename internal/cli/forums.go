package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhsn/forumweb/internal/domain/forum"
	"github.com/mhsn/forumweb/internal/http/validation"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List discussion boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := a.api.Categories(a.ctx(cmd))
			if err != nil {
				return explain("list categories", err)
			}
			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, "No categories found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tNAME\tPOSTS")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Slug, c.Name, c.PostCount)
			}
			return tw.Flush()
		},
	}
}

func newPostsCmd(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "posts <category-slug>",
		Short: "List posts in a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.CategoryPosts(a.ctx(cmd), args[0], forum.ListOptions{Page: page})
			if err != nil {
				return explain("list posts", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", res.Category.Name)
			return printPosts(out, res.Posts, res.Pagination)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var page int
	var category string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts across boards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(strings.Join(args, " "))
			if q == "" {
				return errors.New("search query cannot be empty")
			}
			res, err := a.api.Search(a.ctx(cmd), q, forum.ListOptions{Page: page, Category: category})
			if err != nil {
				return explain("search", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d results for %q\n\n", res.Pagination.Total, q)
			return printPosts(out, res.Posts, res.Pagination)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&category, "category", "", "Limit to one board")
	return cmd
}

func printPosts(out io.Writer, posts []forum.Post, p forum.Pagination) error {
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tREPLIES\tLIKES")
	for _, post := range posts {
		title := post.Title
		if post.IsPinned {
			title = "[pinned] " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", post.PostID, title, post.Author.Name(), post.ReplyCount, post.LikeCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.HasNext {
		fmt.Fprintf(out, "\n(page %d, more with --page %d)\n", p.Page, p.Page+1)
	}
	return nil
}

func newPostCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "post <post-id>",
		Short: "Show a post and its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.api.PostDetail(a.ctx(cmd), args[0])
			if err != nil {
				return explain("show post", err)
			}
			out := cmd.OutOrStdout()
			p := d.Post
			fmt.Fprintf(out, "%s\n", p.Title)
			fmt.Fprintf(out, "  by %s on %s", p.Author.Name(), p.CreatedAt.Format("2006-01-02"))
			if p.Category != nil {
				fmt.Fprintf(out, " in %s", p.Category.Name)
			}
			fmt.Fprintf(out, "  (%d likes)\n", p.LikeCount)
			if p.Tags != "" {
				fmt.Fprintf(out, "  tags: %s\n", p.Tags)
			}
			fmt.Fprintf(out, "\n%s\n", p.Content)

			if len(d.Replies) > 0 {
				fmt.Fprintf(out, "\n%d replies\n", len(d.Replies))
			}
			for _, r := range d.Replies {
				indent := "  "
				if r.IsNestedReply {
					indent = "    "
				}
				fmt.Fprintf(out, "%s- %s (%s, %d likes): %s\n", indent, r.Author.Name(), r.ReplyID, r.LikeCount, r.Content)
			}
			return nil
		},
	}
}

func newNewPostCmd(a *app) *cobra.Command {
	var in forum.NewPost

	cmd := &cobra.Command{
		Use:   "new-post",
		Short: "Start a discussion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fv := validation.Post(in.Title, in.Content, in.CategorySlug, in.Tags); !fv.Valid() {
				return invalid(fv)
			}
			in.Title = strings.TrimSpace(in.Title)
			in.Content = strings.TrimSpace(in.Content)
			in.Tags = strings.Join(validation.SplitList(in.Tags), ",")

			if _, err := a.signedIn(cmd); err != nil {
				return err
			}
			post, err := a.api.CreatePost(a.ctx(cmd), in)
			if err != nil {
				return explain("create post", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created post %s\n", post.PostID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.CategorySlug, "category", "", "Board slug, as listed by forumctl categories")
	cmd.Flags().StringVar(&in.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&in.Content, "content", "", "Post body")
	cmd.Flags().StringVar(&in.Tags, "tags", "", "Comma separated tags")
	return cmd
}

func newReplyCmd(a *app) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "reply <post-id> <text>",
		Short: "Reply to a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args[1:], " "))
			if fv := validation.Reply(content); !fv.Valid() {
				return invalid(fv)
			}
			in := forum.NewReply{Content: content}
			if parent != "" {
				in.ParentReplyID = &parent
			}

			if _, err := a.signedIn(cmd); err != nil {
				return err
			}
			reply, err := a.api.Reply(a.ctx(cmd), args[0], in)
			if err != nil {
				return explain("reply", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replied %s\n", reply.ReplyID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Reply id to answer")
	return cmd
}

func newLikeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like",
		Short: "Toggle your like on a post or reply",
	}

	toggle := func(use, short, op string, like func(*cobra.Command, string) (forum.LikeResult, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.signedIn(cmd); err != nil {
					return err
				}
				res, err := like(cmd, args[0])
				if err != nil {
					return explain(op, err)
				}
				state := "Unliked"
				if res.Liked {
					state = "Liked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d likes)\n", state, res.LikeCount)
				return nil
			},
		}
	}

	cmd.AddCommand(
		toggle("post <post-id>", "Toggle a like on a post", "like post", func(cmd *cobra.Command, id string) (forum.LikeResult, error) {
			return a.api.LikePost(a.ctx(cmd), id)
		}),
		toggle("reply <reply-id>", "Toggle a like on a reply", "like reply", func(cmd *cobra.Command, id string) (forum.LikeResult, error) {
			return a.api.LikeReply(a.ctx(cmd), id)
		}),
	)
	return cmd
}
