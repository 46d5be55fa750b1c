package mongo

import (
	"context"

	"github.com/hongminglow/tasks-be/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (s *Store) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	task.ID = newID()
	if _, err := s.col(colTasks).InsertOne(ctx, task); err != nil {
		return models.Task{}, wrapError(err)
	}
	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	return findOne[models.Task](ctx, s.col(colTasks), byID(id))
}

func (s *Store) ListTasksByOwner(ctx context.Context, owner string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findMany[models.Task](ctx, s.col(colTasks), bson.D{{Key: "owner", Value: owner}}, opts)
}

func (s *Store) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if err := replaceByID(ctx, s.col(colTasks), task.ID, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colTasks), id)
}
