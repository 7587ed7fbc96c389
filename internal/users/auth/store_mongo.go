// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/dberr"
)

// UsersCollection is the MongoDB collection holding accounts.
const UsersCollection = "users"

// userDocument is the BSON shape of an account.
type userDocument struct {
	ID                   bson.ObjectID  `bson:"_id,omitempty"`
	Name                 string         `bson:"name"`
	Email                string         `bson:"email"`
	Password             string         `bson:"password"`
	RefreshToken         string         `bson:"refreshToken,omitempty"`
	ForgotPasswordToken  string         `bson:"forgotPasswordToken,omitempty"`
	ForgotPasswordExpiry *time.Time     `bson:"forgotPasswordExpiry,omitempty"`
	CartData             map[string]any `bson:"cartData"`
	CreatedAt            time.Time      `bson:"createdAt"`
	UpdatedAt            time.Time      `bson:"updatedAt"`
}

func (document *userDocument) toUser() *User {
	cartData := document.CartData
	if cartData == nil {
		cartData = map[string]any{}
	}

	return &User{
		ID:                  document.ID.Hex(),
		Name:                document.Name,
		Email:               document.Email,
		PasswordHash:        document.Password,
		RefreshTokenHash:    document.RefreshToken,
		ResetTokenHash:      document.ForgotPasswordToken,
		ResetTokenExpiresAt: document.ForgotPasswordExpiry,
		CartData:            cartData,
		CreatedAt:           document.CreatedAt,
		UpdatedAt:           document.UpdatedAt,
	}
}

// # User Repository

// MongoUserRepository implements [UserRepository] on a MongoDB collection.
type MongoUserRepository struct {
	database   *mongo.Database
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoUserRepository binds the users collection and ensures its indexes:
// a unique index on email and a sparse index on the reset token hash.
func NewMongoUserRepository(ctx context.Context, database *mongo.Database) (*MongoUserRepository, error) {
	collection := database.Collection(UsersCollection)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "forgotPasswordToken", Value: 1}},
			Options: options.Index().SetName("forgot_password_token").SetSparse(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo_user_repo_index_failed: %w", err)
	}

	return &MongoUserRepository{
		database:   database,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// FindByID retrieves an account by its hex ObjectID.
func (repository *MongoUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("User")
	}
	return repository.findOne(ctx, bson.M{"_id": objectID})
}

// FindByEmail retrieves an account by its normalized email.
func (repository *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, bson.M{"email": email})
}

// FindByResetTokenHash retrieves the account holding an unexpired reset token.
func (repository *MongoUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	return repository.findOne(ctx, bson.M{
		"forgotPasswordToken":  tokenHash,
		"forgotPasswordExpiry": bson.M{"$gt": now},
	})
}

func (repository *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var document userDocument
	if err := repository.collection.FindOne(ctx, filter).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return document.toUser(), nil
}

// Create inserts a new account. The unique email index is the authority on
// duplicates; a violation surfaces as CONFLICT.
func (repository *MongoUserRepository) Create(ctx context.Context, user *User) error {
	now := repository.now()
	document := userDocument{
		ID:           bson.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		Password:     user.PasswordHash,
		RefreshToken: user.RefreshTokenHash,
		CartData:     user.CartData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if document.CartData == nil {
		document.CartData = map[string]any{}
	}

	if _, err := repository.collection.InsertOne(ctx, document); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User with this email already exists")
		}
		return fmt.Errorf("mongo_user_repo_create_failed: %w", dberr.Wrap(err, "User"))
	}

	user.ID = document.ID.Hex()
	user.CartData = document.CartData
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UpdateRefreshTokenHash sets or clears the stored refresh token hash.
func (repository *MongoUserRepository) UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error {
	update := bson.M{"$set": bson.M{"updatedAt": repository.now()}}
	if tokenHash == "" {
		update["$unset"] = bson.M{"refreshToken": ""}
	} else {
		update["$set"].(bson.M)["refreshToken"] = tokenHash
	}

	return repository.updateByID(ctx, id, bson.M{}, update)
}

// RotateRefreshTokenHash swaps the refresh token hash if it still equals currentHash.
func (repository *MongoUserRepository) RotateRefreshTokenHash(ctx context.Context, id, currentHash, nextHash string) error {
	return repository.updateByID(ctx, id,
		bson.M{"refreshToken": currentHash},
		bson.M{"$set": bson.M{"refreshToken": nextHash, "updatedAt": repository.now()}},
	)
}

// SetPasswordResetToken writes the reset token hash and expiry together.
func (repository *MongoUserRepository) SetPasswordResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return repository.updateByID(ctx, id, bson.M{}, bson.M{"$set": bson.M{
		"forgotPasswordToken":  tokenHash,
		"forgotPasswordExpiry": expiresAt,
		"updatedAt":            repository.now(),
	}})
}

// ConsumePasswordResetToken applies the new password and clears the reset
// and refresh fields in one document update, conditional on the token.
func (repository *MongoUserRepository) ConsumePasswordResetToken(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	return repository.updateByID(ctx, id,
		bson.M{
			"forgotPasswordToken":  tokenHash,
			"forgotPasswordExpiry": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{"password": passwordHash, "updatedAt": repository.now()},
			"$unset": bson.M{
				"forgotPasswordToken":  "",
				"forgotPasswordExpiry": "",
				"refreshToken":         "",
			},
		},
	)
}

// updateByID runs a single-document update on _id plus extra conditions.
// Zero matches is reported as NOT_FOUND.
func (repository *MongoUserRepository) updateByID(ctx context.Context, id string, filter bson.M, update bson.M) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("User")
	}
	filter["_id"] = objectID

	result, err := repository.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo_user_repo_update_failed: %w", dberr.Wrap(err, "User"))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// Ping checks the primary is reachable.
func (repository *MongoUserRepository) Ping(ctx context.Context) error {
	return repository.database.Client().Ping(ctx, nil)
}
