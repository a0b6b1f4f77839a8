package posts

import (
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
)

// AuthorView is the public part of a post or comment author
type AuthorView struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Position  string `json:"position,omitempty"`
}

// OrganizationView names the pharmacy a post was written for
type OrganizationView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CategoryView is a category as embedded in posts and listed on its own
type CategoryView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// TagView is a tag attached to a post
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostView is the feed representation of a post. IsLiked and IsBookmarked
// are only present when the request carries a session.
type PostView struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Excerpt      string            `json:"excerpt"`
	Visibility   models.Visibility `json:"visibility"`
	IsPinned     bool              `json:"is_pinned"`
	ViewCount    uint              `json:"view_count"`
	RoomID       *uint             `json:"room_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Author       AuthorView        `json:"author"`
	Organization OrganizationView  `json:"organization"`
	Category     CategoryView      `json:"category"`
	Tags         []TagView         `json:"tags"`
	LikeCount    int64             `json:"like_count"`
	CommentCount int64             `json:"comment_count"`
	IsLiked      *bool             `json:"is_liked,omitempty"`
	IsBookmarked *bool             `json:"is_bookmarked,omitempty"`
}

// CommentView is a comment with its author
type CommentView struct {
	ID        uint       `json:"id"`
	PostID    uint       `json:"post_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Author    AuthorView `json:"author"`
}

func authorView(u models.User) AuthorView {
	return AuthorView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		Position:  u.Position,
	}
}

func categoryView(c models.Category) CategoryView {
	return CategoryView{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Icon:      c.Icon,
		Color:     c.Color,
		SortOrder: c.SortOrder,
	}
}

func postView(p models.Post) PostView {
	tags := make([]TagView, 0, len(p.Tags))
	for _, pt := range p.Tags {
		tags = append(tags, TagView{ID: pt.Tag.ID, Name: pt.Tag.Name, Slug: pt.Tag.Slug})
	}
	return PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Excerpt:      p.Excerpt,
		Visibility:   p.Visibility,
		IsPinned:     p.IsPinned,
		ViewCount:    p.ViewCount,
		RoomID:       p.RoomID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Author:       authorView(p.Author),
		Organization: OrganizationView{ID: p.Organization.ID, Name: p.Organization.Name},
		Category:     categoryView(p.Category),
		Tags:         tags,
	}
}

func commentView(c models.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Author:    authorView(c.Author),
	}
}
