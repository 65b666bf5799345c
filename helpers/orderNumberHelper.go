package helpers

import (
	"context"
	"fmt"
	"time"

	"go-hookah-management/database"
	"go-hookah-management/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var counterCollection *mongo.Collection = database.OpenCollection(database.Client, "counter")

// FormatOrderNumber renders the human-readable order number for a date and
// sequence value, e.g. "05/03/2024-1".
func FormatOrderNumber(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%d", date.Format("02/01/2006"), seq)
}

// NextOrderNumber increments the daily counter and returns the formatted
// order number. The increment is a single findOneAndUpdate with $inc and
// upsert, never a read-then-write, so concurrent creations on the same day
// can not receive the same sequence value.
func NextOrderNumber(ctx context.Context, date time.Time) (string, error) {
	counterId := fmt.Sprintf("orderNumber-%s", date.Format("2006-01-02"))

	var counter models.Counter
	err := counterCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": counterId},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return FormatOrderNumber(date, counter.Seq), nil
}
