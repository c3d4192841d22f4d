// Package ranking computes the trending ordering of public projects.
// Scores are derived per query from post timestamps and view rows;
// nothing is cached and no counter column exists anywhere, so the
// ranking cannot drift from the underlying data.
package ranking

import (
	"sort"
	"time"
)

// Score weights. Daily, weekly, and monthly buckets do not overlap:
// a post counts in exactly one of them, plus the all-time total.
const (
	dailyWeight   = 10.0
	weeklyWeight  = 5.0
	monthlyWeight = 2.0
	totalWeight   = 0.5
	viewWeight    = 0.1
)

// Activity is one project's snapshot of derived counts.
type Activity struct {
	ProjectID    int64     `json:"project_id"`
	DailyPosts   int64     `json:"daily_posts"`
	WeeklyPosts  int64     `json:"weekly_posts"`
	MonthlyPosts int64     `json:"monthly_posts"`
	TotalPosts   int64     `json:"total_posts"`
	ViewCount    int64     `json:"view_count"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Score computes the trending score for one snapshot.
func Score(a Activity) float64 {
	return dailyWeight*float64(a.DailyPosts) +
		weeklyWeight*float64(a.WeeklyPosts) +
		monthlyWeight*float64(a.MonthlyPosts) +
		totalWeight*float64(a.TotalPosts) +
		viewWeight*float64(a.ViewCount)
}

// Rank sorts snapshots by descending score, ties broken by most
// recently updated. The sort is stable so equal projects keep their
// input order.
func Rank(snapshots []Activity) []Activity {
	sort.SliceStable(snapshots, func(i, j int) bool {
		si, sj := Score(snapshots[i]), Score(snapshots[j])
		if si != sj {
			return si > sj
		}
		return snapshots[i].LastUpdated.After(snapshots[j].LastUpdated)
	})
	return snapshots
}

// bucket boundaries relative to now.
func bucketBounds(now time.Time) (day, week, month time.Time) {
	return now.Add(-24 * time.Hour),
		now.Add(-7 * 24 * time.Hour),
		now.Add(-30 * 24 * time.Hour)
}
