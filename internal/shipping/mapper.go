package shipping

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type wilayaDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Numero       int                `bson:"numero"`
	Nom          string             `bson:"nom"`
	PrixDomicile int64              `bson:"prixDomicile"`
	PrixAgence   int64              `bson:"prixAgence"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func fromDocument(d *wilayaDocument) *Wilaya {
	return &Wilaya{
		ID:           d.ID.Hex(),
		Numero:       d.Numero,
		Nom:          d.Nom,
		PrixDomicile: d.PrixDomicile,
		PrixAgence:   d.PrixAgence,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDocument(w *Wilaya) *wilayaDocument {
	return &wilayaDocument{
		Numero:       w.Numero,
		Nom:          w.Nom,
		PrixDomicile: w.PrixDomicile,
		PrixAgence:   w.PrixAgence,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
