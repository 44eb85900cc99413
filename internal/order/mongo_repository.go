package order

import (
	"context"
	"errors"

	"dzgamezone-be/internal/db"
	"dzgamezone-be/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoRepository struct {
	orders   *mongo.Collection
	products *mongo.Collection
}

// NewMongoRepository returns the order store. Stock lives on the product
// documents, so the repository writes to both collections.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{
		orders:   database.Collection(db.CollOrders),
		products: database.Collection(db.CollProducts),
	}
}

func (r *mongoRepository) Create(ctx context.Context, o *Order) (*Order, error) {
	doc, err := toDocument(o)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrReferenceCollision
		}
		return nil, db.Wrap("insert order", err)
	}
	return fromDocument(doc), nil
}

func (r *mongoRepository) List(ctx context.Context) ([]*Order, error) {
	cur, err := r.orders.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, db.Wrap("list orders", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, db.Wrap("decode orders", err)
	}

	orders := make([]*Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, fromDocument(&docs[i]))
	}
	return orders, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var doc orderDocument
	err = r.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, db.Wrap("get order", err)
	}
	return fromDocument(&doc), nil
}

// ApplyTransition runs without a multi-document transaction so that it works
// against a standalone server. The stock write is conditional, the status
// write is guarded by the previous status, and a failed status write is
// followed by the opposite stock movement.
func (r *mongoRepository) ApplyTransition(ctx context.Context, t Transition) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(t.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyTransition"),
		zap.String("order_id", t.OrderID),
	)

	var pid primitive.ObjectID
	if t.Stock != StockNone {
		if pid, err = primitive.ObjectIDFromHex(t.ProductID); err != nil {
			return nil, ErrProductNotFound
		}
	}

	switch t.Stock {
	case StockDeduct:
		if err := r.deductStock(ctx, pid, t); err != nil {
			log.Info("stock deduction refused", zap.Error(err))
			return nil, err
		}
	case StockRestore:
		if err := r.moveStock(ctx, pid, t.VariantName, t.Quantity); err != nil {
			return nil, err
		}
	}

	var doc orderDocument
	err = r.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(t.From)},
		bson.M{"$set": bson.M{
			"status":        string(t.To),
			"stockDeducted": t.StockDeducted,
			"updatedAt":     t.UpdatedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return fromDocument(&doc), nil
	}

	r.compensate(ctx, pid, t, log)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrConcurrentUpdate
	}
	return nil, db.Wrap("update order status", err)
}

func (r *mongoRepository) deductStock(ctx context.Context, pid primitive.ObjectID, t Transition) error {
	ok, err := r.takeStock(ctx, pid, t.VariantName, t.Quantity)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return r.diagnoseStock(ctx, pid, t.VariantName)
}

// takeStock removes qty from the pool only if the pool holds at least qty.
// It reports whether the pool matched.
func (r *mongoRepository) takeStock(ctx context.Context, pid primitive.ObjectID, variantName string, qty int64) (bool, error) {
	filter := bson.M{"_id": pid, "stock": bson.M{"$gte": qty}}
	update := bson.M{"$inc": bson.M{"stock": -qty}}
	if variantName != "" {
		filter = bson.M{
			"_id": pid,
			"variants": bson.M{"$elemMatch": bson.M{
				"name":  variantName,
				"stock": bson.M{"$gte": qty},
			}},
		}
		update = bson.M{"$inc": bson.M{"variants.$.stock": -qty}}
	}

	res, err := r.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, db.Wrap("deduct stock", err)
	}
	return res.MatchedCount == 1, nil
}

// diagnoseStock explains why a conditional decrement matched no document.
func (r *mongoRepository) diagnoseStock(ctx context.Context, pid primitive.ObjectID, variantName string) error {
	var doc struct {
		Variants []struct {
			Name string `bson:"name"`
		} `bson:"variants"`
	}
	err := r.products.FindOne(ctx, bson.M{"_id": pid},
		options.FindOne().SetProjection(bson.M{"variants.name": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrProductNotFound
	}
	if err != nil {
		return db.Wrap("check product", err)
	}
	if variantName == "" {
		return ErrInsufficientStock
	}
	for _, v := range doc.Variants {
		if v.Name == variantName {
			return ErrInsufficientStock
		}
	}
	return ErrVariantNotFound
}

// moveStock adds delta to the pool unconditionally. A pool that no longer
// exists is skipped.
func (r *mongoRepository) moveStock(ctx context.Context, pid primitive.ObjectID, variantName string, delta int64) error {
	filter := bson.M{"_id": pid}
	update := bson.M{"$inc": bson.M{"stock": delta}}
	if variantName != "" {
		filter["variants.name"] = variantName
		update = bson.M{"$inc": bson.M{"variants.$.stock": delta}}
	}

	if _, err := r.products.UpdateOne(ctx, filter, update); err != nil {
		return db.Wrap("move stock", err)
	}
	return nil
}

// compensate reverts the stock movement of t after its status write failed.
// Taking back a restock is conditional so the pool never goes below zero.
func (r *mongoRepository) compensate(ctx context.Context, pid primitive.ObjectID, t Transition, log *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	log = log.With(
		zap.String("product_id", t.ProductID),
		zap.String("variant", t.VariantName),
		zap.Int64("quantity", t.Quantity),
	)

	switch t.Stock {
	case StockDeduct:
		if err := r.moveStock(ctx, pid, t.VariantName, t.Quantity); err != nil {
			log.Error("stock compensation failed", zap.Error(err))
		}
	case StockRestore:
		ok, err := r.takeStock(ctx, pid, t.VariantName, t.Quantity)
		if err != nil {
			log.Error("stock compensation failed", zap.Error(err))
			return
		}
		if !ok {
			log.Warn("restocked units already consumed, compensation skipped")
		}
	}
}
