// Package policy holds the role-based visibility rules shared by every
// service. Functions are pure: callers load the profiles and documents and
// ask whether the actor may proceed.
package policy

import "alcyxob/coachhub/internal/domain"

// Coaches reports whether actor is the assigned trainer of trainee.
func Coaches(actor, trainee *domain.User) bool {
	return actor != nil && trainee != nil &&
		actor.IsTrainer() && trainee.IsTrainee() &&
		trainee.AssignedTrainer() == actor.ID
}

// Oversees reports whether actor may look at target's private data: their
// own, an admin's view of anyone, or a trainer's view of their trainee.
func Oversees(actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID || actor.IsAdmin() || Coaches(actor, target)
}

// CanViewWorkout: public workouts are visible to everyone, private ones to
// their owner and to whoever oversees the owner.
func CanViewWorkout(actor *domain.User, w *domain.Workout, owner *domain.User) bool {
	if actor == nil || w == nil {
		return false
	}
	if w.IsPublic || w.UserID == actor.ID || actor.IsAdmin() {
		return true
	}
	return Coaches(actor, owner)
}

// CanEditWorkout covers content, visibility and exercises. Trainers moderate
// their trainees' plans but do not author them.
func CanEditWorkout(actor *domain.User, w *domain.Workout) bool {
	if actor == nil || w == nil {
		return false
	}
	return w.UserID == actor.ID || actor.IsAdmin()
}

// CanDeleteWorkout allows the owner, an admin, or the owner's trainer.
func CanDeleteWorkout(actor *domain.User, w *domain.Workout, owner *domain.User) bool {
	if CanEditWorkout(actor, w) {
		return true
	}
	return Coaches(actor, owner)
}

// CanFeatureWorkout: only trainers and admins curate, and only public plans.
func CanFeatureWorkout(actor *domain.User, w *domain.Workout) bool {
	if actor == nil || w == nil || !w.IsPublic {
		return false
	}
	return actor.IsTrainer() || actor.IsAdmin()
}

// CanCloneWorkout: public plans, or one's own.
func CanCloneWorkout(actor *domain.User, w *domain.Workout) bool {
	if actor == nil || w == nil {
		return false
	}
	return w.IsPublic || w.UserID == actor.ID
}

// CanCompleteWorkout: only the owner logs a completion of their plan.
func CanCompleteWorkout(actor *domain.User, w *domain.Workout) bool {
	return actor != nil && w != nil && w.UserID == actor.ID
}

// CanSendFeedback checks that the actor is the trainee or the trainer of the
// pair and that the pair is an actual assignment.
func CanSendFeedback(actor *domain.User, trainerID string, trainee *domain.User) bool {
	if actor == nil || trainee == nil || !trainee.IsTrainee() {
		return false
	}
	if trainee.AssignedTrainer() != trainerID {
		return false
	}
	switch {
	case actor.IsTrainee():
		return actor.ID == trainee.ID
	case actor.IsTrainer():
		return actor.ID == trainerID
	}
	return false
}

// FeedbackScope returns the message filter visible to actor.
func FeedbackScope(actor *domain.User) (domain.FeedbackFilter, bool) {
	if actor == nil {
		return domain.FeedbackFilter{}, false
	}
	switch actor.Role {
	case domain.RoleTrainee:
		return domain.FeedbackFilter{TraineeID: actor.ID}, true
	case domain.RoleTrainer:
		return domain.FeedbackFilter{TrainerID: actor.ID}, true
	case domain.RoleAdmin:
		return domain.FeedbackFilter{}, true
	}
	return domain.FeedbackFilter{}, false
}

// CanSeeMessage reports whether m falls inside actor's feedback scope. The
// same rule decides who may dismiss it.
func CanSeeMessage(actor *domain.User, m *domain.Message) bool {
	scope, ok := FeedbackScope(actor)
	if !ok || m == nil {
		return false
	}
	if scope.TrainerID != "" && m.TrainerID != scope.TrainerID {
		return false
	}
	if scope.TraineeID != "" && m.TraineeID != scope.TraineeID {
		return false
	}
	return true
}

// CanMarkRead: the trainer of the pair, or an admin.
func CanMarkRead(actor *domain.User, trainerID string) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || (actor.IsTrainer() && actor.ID == trainerID)
}

// CanClaimTrainee: a trainer may take an unassigned trainee.
func CanClaimTrainee(actor, trainee *domain.User) bool {
	return actor != nil && trainee != nil &&
		actor.IsTrainer() && trainee.IsTrainee() && trainee.AssignedTrainer() == ""
}

// CanListUsers: trainers see their roster, admins everyone.
func CanListUsers(actor *domain.User) bool {
	return actor != nil && (actor.IsTrainer() || actor.IsAdmin())
}

// CanAdministerUsers: role and assignment edits are admin-only.
func CanAdministerUsers(actor *domain.User) bool {
	return actor != nil && actor.IsAdmin()
}
