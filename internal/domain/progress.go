package domain

import "time"

// CompletionRecord is an append-only snapshot of a finished workout.
type CompletionRecord struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"userId" json:"userId"`
	WorkoutID   string     `bson:"workoutId" json:"workoutId"`
	WorkoutName string     `bson:"workoutName" json:"workoutName"`
	Exercises   []Exercise `bson:"exercises" json:"exercises"`
	CompletedAt time.Time  `bson:"completedAt" json:"completedAt"`
}

// Stats are recomputed on demand from per-user document counts.
type Stats struct {
	ActivePlans       int64 `json:"activePlans"`
	CompletedWorkouts int64 `json:"completedWorkouts"`
}
