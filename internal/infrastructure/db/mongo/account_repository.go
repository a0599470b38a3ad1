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

	"github.com/99minutos/identity-service/internal/core/domain"
)

const collectionAccounts = "accounts"

// secretFields are excluded from every display read.
var secretFields = bson.M{"password": 0, "otp": 0, "otp_expires": 0}

// AccountRepository implements ports.AccountRepository on MongoDB. The
// compound unique index on (email, role) enforces account uniqueness.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Address    string             `bson:"address"`
	Phone      string             `bson:"phone"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password,omitempty"`
	Role       string             `bson:"role"`
	AppID      string             `bson:"app_id,omitempty"`
	IsActive   bool               `bson:"is_active"`
	OTP        *string            `bson:"otp"`
	OTPExpires *time.Time         `bson:"otp_expires"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func toDoc(a *domain.Account) accountDoc {
	doc := accountDoc{
		Name:      a.Name,
		Address:   a.Address,
		Phone:     a.Phone,
		Email:     a.Email,
		Password:  a.PasswordHash,
		Role:      string(a.Role),
		AppID:     a.AppID,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.UTC(),
	}
	if a.OTP != "" && a.OTPExpiresAt != nil {
		code := a.OTP
		exp := a.OTPExpiresAt.UTC()
		doc.OTP = &code
		doc.OTPExpires = &exp
	}
	return doc
}

func (d accountDoc) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Address:      d.Address,
		Phone:        d.Phone,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		AppID:        d.AppID,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
	}
	if d.OTP != nil && d.OTPExpires != nil {
		a.SetOTP(*d.OTP, d.OTPExpires.UTC())
	}
	return a
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// EnsureIndexes creates the unique (email, role) index and the lookup index on email.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_role_unique"),
		},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) Insert(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toDoc(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return storageErr("insert account", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	return nil
}

func (r *AccountRepository) FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email, "role": string(role)}, nil)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.findOne(ctx, bson.M{"email": email}, opts)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter, findOpts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storageErr("find account", err)
	}
	return doc.toDomain(), nil
}

// Update rewrites the mutable fields; email, role and created_at are the
// identity and are left untouched.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(account)
	update := bson.M{"$set": bson.M{
		"name":        doc.Name,
		"address":     doc.Address,
		"phone":       doc.Phone,
		"password":    doc.Password,
		"app_id":      doc.AppID,
		"is_active":   doc.IsActive,
		"otp":         doc.OTP,
		"otp_expires": doc.OTPExpires,
	}}

	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return storageErr("update account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageErr("delete account", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List reads every account with the secret fields projected out.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(secretFields).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	defer cur.Close(ctx)

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr("decode accounts", err)
	}

	out := make([]*domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain().Profile())
	}
	return out, nil
}
