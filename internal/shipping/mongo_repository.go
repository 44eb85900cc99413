package shipping

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"dzgamezone-be/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.CollWilayas)}
}

// nameFilter matches nom exactly, case-insensitively, with regex
// metacharacters in name taken literally.
func nameFilter(name string) bson.M {
	pattern := "^" + regexp.QuoteMeta(strings.TrimSpace(name)) + "$"
	return bson.M{"nom": primitive.Regex{Pattern: pattern, Options: "i"}}
}

func (r *mongoRepository) List(ctx context.Context) ([]*Wilaya, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "numero", Value: 1}}))
	if err != nil {
		return nil, db.Wrap("list wilayas", err)
	}
	var docs []wilayaDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, db.Wrap("decode wilayas", err)
	}

	wilayas := make([]*Wilaya, 0, len(docs))
	for i := range docs {
		wilayas = append(wilayas, fromDocument(&docs[i]))
	}
	return wilayas, nil
}

func (r *mongoRepository) findOne(ctx context.Context, op string, filter bson.M) (*Wilaya, error) {
	var doc wilayaDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrWilayaNotFound
	}
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) GetByNumero(ctx context.Context, numero int) (*Wilaya, error) {
	return r.findOne(ctx, "get wilaya by numero", bson.M{"numero": numero})
}

func (r *mongoRepository) GetByName(ctx context.Context, name string) (*Wilaya, error) {
	return r.findOne(ctx, "get wilaya by name", nameFilter(name))
}

func (r *mongoRepository) Create(ctx context.Context, w *Wilaya) (*Wilaya, error) {
	doc := toDocument(w)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrWilayaExists
		}
		return nil, db.Wrap("insert wilaya", err)
	}
	return fromDocument(doc), nil
}

func (r *mongoRepository) Update(ctx context.Context, numero int, ch Changes) (*Wilaya, error) {
	set := bson.M{"updatedAt": ch.UpdatedAt}
	if ch.Nom != nil {
		set["nom"] = *ch.Nom
	}
	if ch.PrixDomicile != nil {
		set["prixDomicile"] = *ch.PrixDomicile
	}
	if ch.PrixAgence != nil {
		set["prixAgence"] = *ch.PrixAgence
	}

	var doc wilayaDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"numero": numero},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrWilayaNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrWilayaExists
		}
		return nil, db.Wrap("update wilaya", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) Delete(ctx context.Context, numero int) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"numero": numero})
	if err != nil {
		return db.Wrap("delete wilaya", err)
	}
	if res.DeletedCount == 0 {
		return ErrWilayaNotFound
	}
	return nil
}
