package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"whisperbox/internal/model"
)

// UserRepository defines the interface for user-related database operations.
//
// Username reservation and inbox mutations are expressed as single conditional
// updates so that concurrent requests never race through a read-then-write pair.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ReclaimPendingByUsername atomically overwrites an unverified account whose
	// verification window has lapsed. Returns mongo.ErrNoDocuments when no such
	// reclaimable account exists.
	ReclaimPendingByUsername(ctx context.Context, username string, params PendingSignupParams) (*model.User, error)

	// ReclaimPendingByEmail is the email-keyed variant of ReclaimPendingByUsername,
	// used when a lapsed pending account holds the email under another username.
	ReclaimPendingByEmail(ctx context.Context, email string, params PendingSignupParams) (*model.User, error)

	MarkVerified(ctx context.Context, id string) error

	// ExpireVerification forces the verification window of a pending account
	// into the past, making it immediately reclaimable.
	ExpireVerification(ctx context.Context, id string) error

	SetAcceptingMessages(ctx context.Context, id string, accepting bool) (*model.User, error)

	// AppendMessage pushes a message onto the recipient's inbox only while the
	// account is accepting messages. Returns the number of matched documents;
	// zero means the recipient is absent or has closed their inbox.
	AppendMessage(ctx context.Context, username string, message model.Message) (int64, error)

	// DeleteMessage removes a message by id from the given account's inbox only.
	// Returns the number of modified documents; zero means no such message.
	DeleteMessage(ctx context.Context, id string, messageID string) (int64, error)
}

// PendingSignupParams defines the fields written when creating or reclaiming
// a pending account.
type PendingSignupParams struct {
	Username            string
	Email               string
	PasswordHash        string
	VerifyCode          string
	VerifyCodeExpiresAt time.Time
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates a new MongoDB repository for users.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Messages == nil {
		user.Messages = []model.Message{}
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"username": username})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) ReclaimPendingByUsername(
	ctx context.Context,
	username string,
	params PendingSignupParams,
) (*model.User, error) {
	return r.reclaimPending(ctx, bson.M{"username": username}, params)
}

func (r *userMongoRepository) ReclaimPendingByEmail(
	ctx context.Context,
	email string,
	params PendingSignupParams,
) (*model.User, error) {
	return r.reclaimPending(ctx, bson.M{"email": email}, params)
}

func (r *userMongoRepository) reclaimPending(
	ctx context.Context,
	keyFilter bson.M,
	params PendingSignupParams,
) (*model.User, error) {
	filter := bson.M{
		"verified":               false,
		"verify_code_expires_at": bson.M{"$lt": time.Now()},
	}
	for k, v := range keyFilter {
		filter[k] = v
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": bson.M{
			"username":               params.Username,
			"email":                  params.Email,
			"password_hash":          params.PasswordHash,
			"verify_code":            params.VerifyCode,
			"verify_code_expires_at": params.VerifyCodeExpiresAt,
			"accepting_messages":     true,
			"messages":               []model.Message{},
			"updated_at":             time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) MarkVerified(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"verified":   true,
			"updated_at": time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) ExpireVerification(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "verified": false},
		bson.M{"$set": bson.M{
			"verify_code_expires_at": time.Now(),
			"updated_at":             time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) SetAcceptingMessages(
	ctx context.Context,
	id string,
	accepting bool,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"accepting_messages": accepting,
			"updated_at":         time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) AppendMessage(
	ctx context.Context,
	username string,
	message model.Message,
) (int64, error) {
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"username": username, "accepting_messages": true},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return 0, err
	}

	return result.MatchedCount, nil
}

func (r *userMongoRepository) DeleteMessage(ctx context.Context, id string, messageID string) (int64, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$pull": bson.M{"messages": bson.M{"id": messageID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
