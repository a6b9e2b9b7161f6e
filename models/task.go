package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoTask is a watchable task. The reward a completion pays is the
// per-video income of the completing user's tier, not a property of the task.
type VideoTask struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	VideoURL  string             `json:"videoUrl" bson:"videoUrl"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// TaskCompletion marks a task as done by a user. A unique index on
// (userId, taskId) prevents completing the same task twice.
type TaskCompletion struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	TaskID       primitive.ObjectID `json:"taskId" bson:"taskId"`
	AmountEarned float64            `json:"amountEarned" bson:"amountEarned"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
