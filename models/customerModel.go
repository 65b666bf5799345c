package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CustomerAddress struct {
	PlotApartment  string `json:"plotApartment" bson:"plotApartment" validate:"required"`
	StreetAddress1 string `json:"streetAddress1" bson:"streetAddress1" validate:"required"`
	StreetAddress2 string `json:"streetAddress2" bson:"streetAddress2"`
	City           string `json:"city" bson:"city" validate:"required"`
	Pin            string `json:"pin" bson:"pin" validate:"required,numeric,len=6"`
}

type Customer struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      *string            `json:"name" bson:"name" validate:"required"`
	Number    *string            `json:"number" bson:"number" validate:"required"`
	Email     *string            `json:"email" bson:"email" validate:"omitempty,email"`
	Address   CustomerAddress    `json:"address" bson:"address"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
