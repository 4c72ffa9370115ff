package service

import (
	"context"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

type Stats struct {
	TotalWorkouts         int `json:"total_workouts"`
	TotalCaloriesBurned   int `json:"total_calories_burned"`
	StreakPoints          int `json:"streak_points"`
	CharityMilestones     int `json:"charity_milestones"`
	PointsToNextMilestone int `json:"points_to_next_milestone"`
	RecordsCount          int `json:"records_count"`
}

func ProgressHistory(ctx context.Context, progress storage.ProgressRepository, userID string, limit int) ([]internal.ProgressRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	return progress.ListProgress(ctx, userID, limit)
}

// ProgressStats aggregates over the user's full record history. The windowed
// default of ProgressHistory would undercount the totals.
func ProgressStats(ctx context.Context, progress storage.ProgressRepository, user *internal.User) (Stats, error) {
	records, err := progress.ListProgress(ctx, user.ID, 0)
	if err != nil {
		return Stats{}, err
	}
	return CalculateStats(user, records), nil
}

// CalculateStats aggregates dashboard figures. TotalWorkouts comes from the
// user row (the ledger's authoritative counter); calories are summed over
// both auto-logged and manual records.
func CalculateStats(user *internal.User, records []internal.ProgressRecord) Stats {
	total := 0
	for _, r := range records {
		total += r.CaloriesBurned
	}
	return Stats{
		TotalWorkouts:         user.TotalWorkouts,
		TotalCaloriesBurned:   total,
		StreakPoints:          user.StreakPoints,
		CharityMilestones:     CharityMilestones(user.StreakPoints),
		PointsToNextMilestone: PointsToNextMilestone(user.StreakPoints),
		RecordsCount:          len(records),
	}
}
