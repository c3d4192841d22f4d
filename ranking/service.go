package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/crewlink/server/apperr"
	"github.com/crewlink/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Trending result item: the project plus its snapshot and score.
type Trending struct {
	Project model.Project `json:"project"`
	Score   float64       `json:"score"`
	Counts  Activity      `json:"counts"`
}

// Service assembles activity snapshots and ranks public projects.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a ranking Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Trending ranks all public projects as of now and returns the top
// limit entries. Counts are recomputed from posts and view rows on
// every call.
func (s *Service) Trending(ctx context.Context, limit int) ([]Trending, error) {
	if limit <= 0 {
		limit = 20
	}

	db := s.db.WithContext(ctx)

	var projects []model.Project
	if err := db.Where("is_public = ?", true).Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []Trending{}, nil
	}

	now := time.Now()
	snapshots := make([]Activity, 0, len(projects))
	byProject := make(map[int64]model.Project, len(projects))
	for _, p := range projects {
		byProject[p.ID] = p
		a, err := s.snapshot(db, &p, now)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, a)
	}

	Rank(snapshots)
	if len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}

	out := make([]Trending, len(snapshots))
	for i, a := range snapshots {
		out[i] = Trending{Project: byProject[a.ProjectID], Score: Score(a), Counts: a}
	}
	return out, nil
}

// snapshot derives one project's counts. Four grouped counts per
// project keeps this a handful of indexed queries; a materialized
// counter column is deliberately not an option here.
func (s *Service) snapshot(db *gorm.DB, p *model.Project, now time.Time) (Activity, error) {
	day, week, month := bucketBounds(now)
	a := Activity{ProjectID: p.ID, LastUpdated: p.LastUpdated}

	posts := db.Model(&model.Post{}).
		Where("project_id = ?", p.ID).
		Session(&gorm.Session{})
	if err := posts.Count(&a.TotalPosts).Error; err != nil {
		return a, err
	}
	if err := posts.Where("created_at > ?", day).Count(&a.DailyPosts).Error; err != nil {
		return a, err
	}
	if err := posts.Where("created_at <= ? AND created_at > ?", day, week).
		Count(&a.WeeklyPosts).Error; err != nil {
		return a, err
	}
	if err := posts.Where("created_at <= ? AND created_at > ?", week, month).
		Count(&a.MonthlyPosts).Error; err != nil {
		return a, err
	}
	if err := db.Model(&model.ProjectView{}).
		Where("project_id = ?", p.ID).
		Count(&a.ViewCount).Error; err != nil {
		return a, err
	}
	return a, nil
}

// RecordView inserts the per-user-per-day view row. A second view on
// the same day hits the unique index and is silently absorbed.
func (s *Service) RecordView(ctx context.Context, userID, projectID int64) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&model.Project{}).Where("id = ?", projectID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %d: %w", projectID, apperr.ErrNotFound)
	}

	view := &model.ProjectView{
		ProjectID: projectID,
		UserID:    userID,
		ViewDate:  time.Now().Format("2006-01-02"),
	}
	if err := db.Create(view).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}
