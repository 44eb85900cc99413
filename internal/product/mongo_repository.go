package product

import (
	"context"
	"errors"
	"regexp"

	"dzgamezone-be/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns the product store backed by the products collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.CollProducts)}
}

// buildFilter translates f into a query document. ok is false when the
// filter can match nothing, e.g. a malformed category id.
func buildFilter(f Filter) (filter bson.M, ok bool) {
	filter = bson.M{}
	var ors []bson.M

	if f.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(f.CategoryID)
		if err != nil {
			return nil, false
		}
		filter["category"] = oid
	}

	if f.Brand != "" {
		filter["brand"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Brand) + "$", Options: "i"}
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["basePrice"] = price
	}

	if f.InStock {
		ors = append(ors, bson.M{"$or": bson.A{
			bson.M{"stock": bson.M{"$gt": 0}},
			bson.M{"variants.stock": bson.M{"$gt": 0}},
		}})
	}

	if f.IsFeatured {
		filter["isFeatured"] = true
	}

	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		ors = append(ors, bson.M{"$or": bson.A{
			bson.M{"name": re},
			bson.M{"slug": re},
		}})
	}

	switch len(ors) {
	case 0:
	case 1:
		filter["$or"] = ors[0]["$or"]
	default:
		and := bson.A{}
		for _, o := range ors {
			and = append(and, o)
		}
		filter["$and"] = and
	}

	return filter, true
}

func (r *mongoRepository) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*Product, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, db.Wrap("find products", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, db.Wrap("decode products", err)
	}

	products := make([]*Product, 0, len(docs))
	for i := range docs {
		products = append(products, fromDocument(&docs[i]))
	}
	return products, nil
}

func (r *mongoRepository) List(ctx context.Context, f Filter) ([]*Product, error) {
	filter, ok := buildFilter(f)
	if !ok {
		return []*Product{}, nil
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc productDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, db.Wrap("get product", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	result := make(map[string]*Product)

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return result, nil
	}

	products, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *mongoRepository) Create(ctx context.Context, p *Product) (*Product, error) {
	doc, err := toDocument(p)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrProductExists
		}
		return nil, db.Wrap("insert product", err)
	}
	return fromDocument(doc), nil
}

func (r *mongoRepository) Update(ctx context.Context, id string, ch Changes) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	set, err := setDocument(ch)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrProductExists
		}
		return nil, db.Wrap("update product", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return db.Wrap("delete product", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
