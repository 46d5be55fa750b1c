package models

// Task is a unit of work owned by a user. Owner is a soft reference to User.ID.
type Task struct {
	ID          string `json:"_id" bson:"_id"`
	Owner       string `json:"owner" bson:"owner"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// NewTask returns an uncompleted task.
func NewTask(owner, title, description string) Task {
	return Task{Owner: owner, Title: title, Description: description}
}
