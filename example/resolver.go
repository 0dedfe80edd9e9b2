package example

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Post is a parent object that may arrive partially populated: listings
// endpoints often embed the author, detail endpoints only the id.
type Post struct {
	ID       string
	AuthorID string
	Author   *User
}

// AuthorOf resolves the author of a post. Data already present on the parent
// wins; only absent fields go through the batched loader.
func AuthorOf(loader *UserLoader, post *Post) (*User, error) {
	if post.Author != nil {
		return post.Author, nil
	}
	return loader.Load(post.AuthorID)
}

// AuthorsOf resolves the authors of many posts concurrently, the way sibling
// field resolutions run during one query pass. Lookups issued within the
// loader's batch window collapse into a single fetch.
func AuthorsOf(ctx context.Context, loader *UserLoader, posts []*Post) ([]*User, error) {
	authors := make([]*User, len(posts))
	g, _ := errgroup.WithContext(ctx)
	for i, post := range posts {
		i, post := i, post
		g.Go(func() error {
			author, err := AuthorOf(loader, post)
			if err != nil {
				return err
			}
			authors[i] = author
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return authors, nil
}
