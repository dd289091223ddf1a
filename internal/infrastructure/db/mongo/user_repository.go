package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/froker/lending-system/internal/core/domain"
)

const userCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique indexes the account invariants rely on.
// Call once at startup.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	PhoneNumber        string             `bson:"phone_number"`
	Email              string             `bson:"email"`
	Name               string             `bson:"name"`
	PasswordHash       string             `bson:"password_hash"`
	DateOfRegistration int64              `bson:"date_of_registration"`
	DateOfBirth        string             `bson:"date_of_birth"`
	MonthlySalary      float64            `bson:"monthly_salary"`
	Status             string             `bson:"status"`
	PurchasePower      float64            `bson:"purchase_power"`
	BorrowedAmount     float64            `bson:"borrowed_amount"`
	RefreshToken       string             `bson:"refresh_token,omitempty"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		PhoneNumber:        user.PhoneNumber,
		Email:              user.Email,
		Name:               user.Name,
		PasswordHash:       user.PasswordHash,
		DateOfRegistration: user.DateOfRegistration.Unix(),
		DateOfBirth:        user.DateOfBirth,
		MonthlySalary:      user.MonthlySalary,
		Status:             string(user.Status),
		PurchasePower:      user.PurchasePower,
		BorrowedAmount:     user.BorrowedAmount,
		CreatedAt:          user.CreatedAt.Unix(),
		UpdatedAt:          user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken swaps old for new in a single conditional update. The
// filter includes the old token, so a concurrent rotation that already
// replaced it leaves nothing to match and the caller gets ErrUnauthorized.
func (r *MongoUserRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUnauthorized
	}

	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "refresh_token": oldToken},
		bson.M{"$set": bson.M{"refresh_token": newToken, "updated_at": time.Now().UTC().Unix()}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	// $unset on an absent field matches but changes nothing, which is
	// exactly the idempotence logout needs.
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$unset": bson.M{"refresh_token": 1},
			"$set":   bson.M{"updated_at": time.Now().UTC().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) ApplyBorrow(ctx context.Context, id string, borrowedAmount, purchasePower float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"borrowed_amount": borrowedAmount,
			"purchase_power":  purchasePower,
			"updated_at":      time.Now().UTC().Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("apply borrow: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 mu.ID.Hex(),
		PhoneNumber:        mu.PhoneNumber,
		Email:              mu.Email,
		Name:               mu.Name,
		PasswordHash:       mu.PasswordHash,
		DateOfRegistration: unixToTime(mu.DateOfRegistration),
		DateOfBirth:        mu.DateOfBirth,
		MonthlySalary:      mu.MonthlySalary,
		Status:             domain.ApplicationStatus(mu.Status),
		PurchasePower:      mu.PurchasePower,
		BorrowedAmount:     mu.BorrowedAmount,
		RefreshToken:       mu.RefreshToken,
		CreatedAt:          unixToTime(mu.CreatedAt),
		UpdatedAt:          unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
