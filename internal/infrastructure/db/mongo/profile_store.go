package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/negocehub/marketplace-api/pkg/session"
)

const profileCollection = "profiles"

// ProfileStore persists application profiles provisioned after provider-side
// signup. Documents are keyed by the provider-assigned identity id, so a
// second CreateProfile for the same identity fails on the _id index.
type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{coll: db.Collection(profileCollection)}
}

type mongoProfile struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *ProfileStore) CreateProfile(ctx context.Context, p session.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProfile{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("profile %s already provisioned: %w", p.ID, err)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}
