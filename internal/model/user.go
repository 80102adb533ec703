package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account with its credentials, verification
// state and inbox. Messages are embedded in the user document so that append
// and delete are single-document atomic operations.
type User struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"`
	Username            string        `bson:"username"`
	Email               string        `bson:"email"`
	PasswordHash        string        `bson:"password_hash"`
	Verified            bool          `bson:"verified"`
	VerifyCode          string        `bson:"verify_code"`
	VerifyCodeExpiresAt time.Time     `bson:"verify_code_expires_at"`
	AcceptingMessages   bool          `bson:"accepting_messages"`
	Messages            []Message     `bson:"messages"`
	CreatedAt           time.Time     `bson:"created_at"`
	UpdatedAt           time.Time     `bson:"updated_at"`
}

// Message is an anonymous text item stored against its recipient account.
// A message is immutable once created and carries no sender identity.
type Message struct {
	ID        string    `bson:"id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}
