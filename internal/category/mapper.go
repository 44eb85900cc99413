package category

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type categoryDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Name        string              `bson:"name"`
	Slug        string              `bson:"slug"`
	Description string              `bson:"description"`
	Parent      *primitive.ObjectID `bson:"parent"`
	CreatedAt   time.Time           `bson:"createdAt"`
}

func fromDocument(d *categoryDocument) *Category {
	c := &Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
	if d.Parent != nil {
		c.ParentID = d.Parent.Hex()
	}
	return c
}

// parentRef converts a parent id into its stored form. An empty id means no parent.
func parentRef(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrParentNotFound
	}
	return &oid, nil
}

func toObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}
