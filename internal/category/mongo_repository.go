package category

import (
	"context"
	"errors"

	"dzgamezone-be/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns the category store backed by the categories collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.CollCategories)}
}

func (r *mongoRepository) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*Category, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, db.Wrap("find categories", err)
	}
	var docs []categoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, db.Wrap("decode categories", err)
	}

	categories := make([]*Category, 0, len(docs))
	for i := range docs {
		categories = append(categories, fromDocument(&docs[i]))
	}
	return categories, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]*Category, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	var doc categoryDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, db.Wrap("get category", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Category, error) {
	result := make(map[string]*Category)
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return result, nil
	}

	categories, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		result[c.ID] = c
	}
	return result, nil
}

func (r *mongoRepository) Create(ctx context.Context, c *Category) (*Category, error) {
	parent, err := parentRef(c.ParentID)
	if err != nil {
		return nil, err
	}

	doc := categoryDocument{
		ID:          primitive.NewObjectID(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Parent:      parent,
		CreatedAt:   c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, db.Wrap("insert category", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) Update(ctx context.Context, id string, changes Changes) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}

	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Slug != nil {
		set["slug"] = *changes.Slug
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.ParentID != nil {
		parent, err := parentRef(*changes.ParentID)
		if err != nil {
			return nil, err
		}
		set["parent"] = parent
	}

	var doc categoryDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, db.Wrap("update category", err)
	}
	return fromDocument(&doc), nil
}

func (r *mongoRepository) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	oids := toObjectIDs(parentIDs)
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx,
		bson.M{"parent": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, db.Wrap("list child categories", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, db.Wrap("decode child categories", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

func (r *mongoRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, db.Wrap("delete categories", err)
	}
	return res.DeletedCount, nil
}
