package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"whisperbox/internal/model"
	"whisperbox/internal/repository"
)

// fakeUserRepo is an in-memory stand-in for the mongo user repository. It
// honors the same contract: unique username/email, conditional reclaim,
// gate-checked append and ownership-scoped delete.
type fakeUserRepo struct {
	mu    sync.Mutex
	users []*model.User

	forcedErr error // returned by every method when set
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		repo.users = append(repo.users, u)
	}
	return repo
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, duplicateKeyErr()
		}
	}

	user.ID = bson.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users = append(f.users, user)

	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID.Hex() == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) ReclaimPendingByUsername(
	_ context.Context,
	username string,
	params repository.PendingSignupParams,
) (*model.User, error) {
	return f.reclaim(func(u *model.User) bool { return u.Username == username }, params)
}

func (f *fakeUserRepo) ReclaimPendingByEmail(
	_ context.Context,
	email string,
	params repository.PendingSignupParams,
) (*model.User, error) {
	return f.reclaim(func(u *model.User) bool { return u.Email == email }, params)
}

func (f *fakeUserRepo) reclaim(match func(*model.User) bool, params repository.PendingSignupParams) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) && !u.Verified && u.VerifyCodeExpiresAt.Before(time.Now()) {
			for _, other := range f.users {
				if other != u && (other.Username == params.Username || other.Email == params.Email) {
					return nil, duplicateKeyErr()
				}
			}

			u.Username = params.Username
			u.Email = params.Email
			u.PasswordHash = params.PasswordHash
			u.VerifyCode = params.VerifyCode
			u.VerifyCodeExpiresAt = params.VerifyCodeExpiresAt
			u.AcceptingMessages = true
			u.Messages = []model.Message{}
			u.UpdatedAt = time.Now()

			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID.Hex() == id {
			u.Verified = true
		}
	}
	return nil
}

func (f *fakeUserRepo) ExpireVerification(_ context.Context, id string) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID.Hex() == id && !u.Verified {
			u.VerifyCodeExpiresAt = time.Now().Add(-time.Second)
		}
	}
	return nil
}

func (f *fakeUserRepo) SetAcceptingMessages(_ context.Context, id string, accepting bool) (*model.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID.Hex() == id {
			u.AcceptingMessages = accepting
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) AppendMessage(_ context.Context, username string, message model.Message) (int64, error) {
	if f.forcedErr != nil {
		return 0, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username && u.AcceptingMessages {
			u.Messages = append(u.Messages, message)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeUserRepo) DeleteMessage(_ context.Context, id string, messageID string) (int64, error) {
	if f.forcedErr != nil {
		return 0, f.forcedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID.Hex() != id {
			continue
		}
		for i, m := range u.Messages {
			if m.ID == messageID {
				u.Messages = append(u.Messages[:i], u.Messages[i+1:]...)
				return 1, nil
			}
		}
	}
	return 0, nil
}

// mustGet returns the stored user by username, for assertions.
func (f *fakeUserRepo) mustGet(username string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied
		}
	}
	return nil
}

// fakeMailer records verification-code dispatches.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to       string
	username string
	code     string
}

func (f *fakeMailer) SendVerificationCode(to, username, code string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, username: username, code: code})
	return nil
}

// fakeSessionRepo is an in-memory session store.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, session *model.Session) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session.ID = bson.NewObjectID()
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	f.sessions[session.ID.Hex()] = session

	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) UpdateTokens(
	_ context.Context,
	id string,
	params repository.UpdateTokensParams,
) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	session.AccessToken = params.AccessToken
	session.RefreshToken = params.RefreshToken
	session.AccessTokenExpiresAt = params.AccessTokenExpiresAt
	session.RefreshTokenExpiresAt = params.RefreshTokenExpiresAt
	session.UpdatedAt = time.Now()

	copied := *session
	return &copied, nil
}
