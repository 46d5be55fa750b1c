package mongo

import (
	"context"

	"github.com/hongminglow/tasks-be/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CreateUser inserts user under a fresh ObjectID hex identifier.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = newID()
	if _, err := s.col(colUsers).InsertOne(ctx, user); err != nil {
		return models.User{}, wrapError(err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), byID(id))
}

// FindByUsername fetches a user by exact, case-sensitive username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), bson.D{{Key: "username", Value: username}})
}

// ListUsers returns every user in insertion order, without password hashes.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	return findMany[models.User](ctx, s.col(colUsers), bson.D{}, opts)
}

// UpdateUser replaces the stored document with user.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := replaceByID(ctx, s.col(colUsers), user.ID, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes a single user document. Owned tasks are not touched.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colUsers), id)
}
