package models

// Counter backs the daily order-number sequence. The _id is
// "orderNumber-YYYY-MM-DD", so a new calendar day starts a fresh counter.
type Counter struct {
	ID  string `json:"_id" bson:"_id"`
	Seq int    `json:"seq" bson:"seq"`
}
