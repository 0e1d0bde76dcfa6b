package domain

import "time"

// Difficulty of a workout plan.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether d is a known difficulty level.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Workout is a named plan owned by exactly one user.
type Workout struct {
	ID              string     `bson:"_id" json:"id"`
	UserID          string     `bson:"userId" json:"userId"`
	Name            string     `bson:"name" json:"name"`
	Description     string     `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty      Difficulty `bson:"difficulty" json:"difficulty"`
	Recommendations string     `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
	IsPublic        bool       `bson:"isPublic" json:"isPublic"`
	IsFeatured      bool       `bson:"isFeatured" json:"isFeatured"` // only meaningful when IsPublic
	ClonedFrom      *string    `bson:"clonedFrom,omitempty" json:"clonedFrom,omitempty"`
	CreatedBy       string     `bson:"createdBy" json:"createdBy"` // owner's display name at creation
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutPatch is a merge-patch: only non-nil fields change.
type WorkoutPatch struct {
	Name            *string     `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description     *string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	Difficulty      *Difficulty `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Recommendations *string     `json:"recommendations,omitempty" validate:"omitempty,max=2000"`
	IsPublic        *bool       `json:"isPublic,omitempty"`
	IsFeatured      *bool       `json:"isFeatured,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p WorkoutPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Difficulty == nil &&
		p.Recommendations == nil && p.IsPublic == nil && p.IsFeatured == nil
}

// Exercise belongs to a workout and has no lifecycle of its own.
// CreatedAt defines display order.
type Exercise struct {
	ID        string    `bson:"_id" json:"id"`
	WorkoutID string    `bson:"workoutId" json:"workoutId"`
	Name      string    `bson:"name" json:"name"`
	Sets      int       `bson:"sets" json:"sets"`
	Reps      int       `bson:"reps" json:"reps"`
	Weight    string    `bson:"weight,omitempty" json:"weight,omitempty"` // free text, e.g. "60kg" or "bodyweight"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
