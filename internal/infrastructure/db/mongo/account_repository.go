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

	"github.com/99minutos/account-service/internal/core/domain"
)

const accountsCollection = "users"

// AccountRepository implements ports.AccountRepository on a MongoDB
// collection with a unique index on email.
type AccountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection), now: time.Now}
}

// mongoAccount is the stored document. A logged out account has a null token.
type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	Subscription string             `bson:"subscription"`
	Token        *string            `bson:"token"`
	AvatarURL    string             `bson:"avatarURL,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (m *mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           m.ID.Hex(),
		Email:        m.Email,
		PasswordHash: m.Password,
		Subscription: domain.Subscription(m.Subscription),
		AvatarURL:    m.AvatarURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Token != nil {
		a.Token = *m.Token
	}
	return a
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{
		Email:        account.Email,
		Password:     account.PasswordHash,
		Subscription: string(account.Subscription),
		Token:        nullable(account.Token),
		AvatarURL:    account.AvatarURL,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// ReplaceToken swaps the live token in one round trip and reports the token
// that was stored before.
func (r *AccountRepository) ReplaceToken(ctx context.Context, id, token string) (string, error) {
	var before struct {
		Token *string `bson:"token"`
	}
	err := r.findOneAndSet(ctx, id, bson.M{"token": nullable(token)}, options.Before, bson.M{"token": 1}, &before)
	if err != nil {
		return "", fmt.Errorf("replace token: %w", err)
	}
	if before.Token == nil {
		return "", nil
	}
	return *before.Token, nil
}

func (r *AccountRepository) UpdateSubscription(ctx context.Context, id string, tier domain.Subscription) (*domain.Account, error) {
	var after mongoAccount
	err := r.findOneAndSet(ctx, id, bson.M{"subscription": string(tier)}, options.After, nil, &after)
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return after.toDomain(), nil
}

func (r *AccountRepository) ReplaceAvatar(ctx context.Context, id, url string) (string, error) {
	var before struct {
		AvatarURL string `bson:"avatarURL"`
	}
	err := r.findOneAndSet(ctx, id, bson.M{"avatarURL": url}, options.Before, bson.M{"avatarURL": 1}, &before)
	if err != nil {
		return "", fmt.Errorf("replace avatar: %w", err)
	}
	return before.AvatarURL, nil
}

func (r *AccountRepository) findOneAndSet(
	ctx context.Context,
	id string,
	set bson.M,
	returnDoc options.ReturnDocument,
	projection any,
	out any,
) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = r.now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(returnDoc)
	if projection != nil {
		opts.SetProjection(projection)
	}

	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrAccountNotFound
	}
	return err
}

// EnsureIndexes creates the unique email index the signup conflict relies on.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
