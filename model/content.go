package model

import "time"

// Post is project content; its timestamps feed the trending ranking.
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index:idx_post_project;not null" json:"project_id"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  int64     `gorm:"index:idx_post_author;not null" json:"author_id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"index:idx_post_created;autoCreateTime" json:"created_at"`
}

// Comment is a reply on a post. Replies-to-replies form a flat tree
// keyed by the nullable ParentID; deleting a post cascades the whole
// tree at the store level.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index:idx_comment_post;not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  int64     `gorm:"not null" json:"author_id"`
	ParentID  *int64    `gorm:"index:idx_comment_parent" json:"parent_id,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PostLike is one user's like on a post, unique per pair. Counts are
// always derived from these rows, never stored on the post.
type PostLike struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"uniqueIndex:idx_like_pair;not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    int64     `gorm:"uniqueIndex:idx_like_pair;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProjectView records one user viewing a project on one calendar day
// (ViewDate is YYYY-MM-DD). The triple unique index makes view counts
// distinct per user per day; the trending view count is the number of
// these rows, recomputed per query.
type ProjectView struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"uniqueIndex:idx_view_day;not null" json:"project_id"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    int64     `gorm:"uniqueIndex:idx_view_day;not null" json:"user_id"`
	ViewDate  string    `gorm:"uniqueIndex:idx_view_day;size:10;not null" json:"view_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
