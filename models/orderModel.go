package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workflow steps in fulfillment order.
const (
	StepPreparation = "Preparation"
	StepDelivery    = "Delivery"
	StepCollection  = "Collection"
)

// Order statuses. "Out For Collection" is a legacy label kept for older
// dashboard builds that filter on it.
const (
	StatusPending          = "Pending"
	StatusPreparing        = "Preparing"
	StatusPrepared         = "Prepared"
	StatusOutForDelivery   = "Out for Delivery"
	StatusDelivered        = "Delivered"
	StatusOutForCollection = "Out For Collection"
	StatusCompleted        = "Completed"
)

// Order types.
const (
	OrderTypeRegular = "Regular Order"
	OrderTypeParty   = "Party Catering"
)

const DefaultFlavor = "Mint"

// Task types carried on staff assignments.
const (
	TaskPrepare  = "Prepare"
	TaskDelivery = "Delivery"
	TaskCollect  = "Collect"
)

const (
	MaxStepImages   = 5
	MaxStepNotesLen = 500
)

var (
	ErrUnknownTaskType         = errors.New("unknown task type")
	ErrStepAlreadyStarted      = errors.New("step has already been started")
	ErrStepNotStarted          = errors.New("cannot complete a step that has not been started")
	ErrStepAlreadyCompleted    = errors.New("step has already been completed")
	ErrOrderNotPrepared        = errors.New("cannot start Delivery: order is not Prepared")
	ErrOrderNotDelivered       = errors.New("cannot start Collection: order is not Delivered")
	ErrPreparationNotCompleted = errors.New("cannot proceed to Delivery: Preparation not completed")
	ErrDeliveryNotCompleted    = errors.New("cannot proceed to Collection: Delivery not completed")
	ErrEvidenceRequired        = errors.New("at least one evidence image is required")
	ErrTooManyImages           = errors.New("max 5 images allowed")
	ErrNotesTooLong            = errors.New("notes exceed the 500 character limit")
)

type OrderItems struct {
	Hookah   int `json:"hookah" bson:"hookah" validate:"min=0"`
	Chillums int `json:"chillums" bson:"chillums" validate:"min=0"`
	Coals    int `json:"coals" bson:"coals" validate:"min=0"`
}

type OrderExtras struct {
	Ice   bool `json:"ice" bson:"ice"`
	Cups  bool `json:"cups" bson:"cups"`
	Tongs bool `json:"tongs" bson:"tongs"`
}

// OrderStaff holds the uuids of the staff members responsible for each task.
type OrderStaff struct {
	PreparedBy  string `json:"preparedBy" bson:"preparedBy"`
	DeliveredBy string `json:"deliveredBy" bson:"deliveredBy"`
	CollectedBy string `json:"collectedBy" bson:"collectedBy"`
}

// Address is the delivery address snapshot taken at order creation. It does
// not follow later edits to the customer record.
type Address struct {
	PlotApartment  string `json:"plotApartment" bson:"plotApartment"`
	StreetAddress1 string `json:"streetAddress1" bson:"streetAddress1"`
	StreetAddress2 string `json:"streetAddress2" bson:"streetAddress2"`
	City           string `json:"city" bson:"city"`
	Pin            string `json:"pin" bson:"pin"`
}

// StepDetail records the timing, staff, notes and photographic evidence of
// one fulfillment step.
type StepDetail struct {
	StartedAt   *time.Time `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	StaffId     string     `json:"staffId" bson:"staffId"`
	Notes       string     `json:"notes" bson:"notes"`
	Images      []string   `json:"images" bson:"images"`
}

type StepDetails struct {
	Preparation StepDetail `json:"preparation" bson:"preparation"`
	Delivery    StepDetail `json:"delivery" bson:"delivery"`
	Collection  StepDetail `json:"collection" bson:"collection"`
}

type StatusChange struct {
	Status    string    `json:"status" bson:"status"`
	ChangedBy string    `json:"changedBy" bson:"changedBy"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type Order struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Uuid          string             `json:"uuid" bson:"uuid"`
	OrderNumber   string             `json:"orderNumber" bson:"orderNumber"`
	Customer      primitive.ObjectID `json:"customer" bson:"customer"`
	OrderType     string             `json:"orderType" bson:"orderType" validate:"eq=Regular Order|eq=Party Catering"`
	Items         OrderItems         `json:"items" bson:"items"`
	Flavor        string             `json:"flavor" bson:"flavor"`
	Extras        OrderExtras        `json:"extras" bson:"extras"`
	Staff         OrderStaff         `json:"staff" bson:"staff"`
	Address       Address            `json:"address" bson:"address"`
	CurrentStep   string             `json:"currentStep" bson:"currentStep"`
	StepDetails   StepDetails        `json:"stepDetails" bson:"stepDetails"`
	Status        string             `json:"status" bson:"status"`
	StatusHistory []StatusChange     `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// StepForTask maps an assignment task type to its workflow step. Matching is
// case-insensitive since the mobile clients send mixed casing.
func StepForTask(taskType string) (string, bool) {
	switch strings.ToLower(taskType) {
	case strings.ToLower(TaskPrepare):
		return StepPreparation, true
	case strings.ToLower(TaskDelivery):
		return StepDelivery, true
	case strings.ToLower(TaskCollect):
		return StepCollection, true
	}
	return "", false
}

func (o *Order) stepDetail(step string) *StepDetail {
	switch step {
	case StepPreparation:
		return &o.StepDetails.Preparation
	case StepDelivery:
		return &o.StepDetails.Delivery
	case StepCollection:
		return &o.StepDetails.Collection
	}
	return nil
}

// InitializePreparation applies the creation transition: the preparation step
// starts immediately with the preparing staff member on it.
func (o *Order) InitializePreparation(now time.Time) {
	o.StepDetails.Preparation = StepDetail{
		StartedAt: &now,
		StaffId:   o.Staff.PreparedBy,
		Notes:     "Order created",
		Images:    []string{},
	}
	o.CurrentStep = StepPreparation
	o.Status = StatusPreparing
}

// StartStep begins the step belonging to taskType. Preparation starts at
// order creation, so only Delivery and Collect can be started here. The
// receiver is left untouched when an error is returned.
func (o *Order) StartStep(taskType string, staffId string, now time.Time) error {
	step, ok := StepForTask(taskType)
	if !ok {
		return ErrUnknownTaskType
	}

	detail := o.stepDetail(step)
	if detail.StartedAt != nil {
		return ErrStepAlreadyStarted
	}

	switch step {
	case StepPreparation:
		// Initialized on creation, so StartedAt is always set and the
		// check above already rejected this.
		return ErrStepAlreadyStarted
	case StepDelivery:
		if o.Status != StatusPrepared {
			return ErrOrderNotPrepared
		}
		if o.StepDetails.Preparation.CompletedAt == nil {
			return ErrPreparationNotCompleted
		}
		o.Status = StatusOutForDelivery
	case StepCollection:
		if o.Status != StatusDelivered {
			return ErrOrderNotDelivered
		}
		if o.StepDetails.Delivery.CompletedAt == nil {
			return ErrDeliveryNotCompleted
		}
		o.Status = StatusOutForCollection
	}

	detail.StartedAt = &now
	detail.StaffId = staffId
	o.CurrentStep = step
	o.UpdatedAt = now
	return nil
}

// CompleteStep finishes the step belonging to taskType, records notes and
// evidence and advances the workflow. Completing the collection step is
// terminal and forces the Completed status. The receiver is left untouched
// when an error is returned.
func (o *Order) CompleteStep(taskType string, notes string, images []string, now time.Time) error {
	step, ok := StepForTask(taskType)
	if !ok {
		return ErrUnknownTaskType
	}
	if len(images) == 0 {
		return ErrEvidenceRequired
	}
	if len(images) > MaxStepImages {
		return ErrTooManyImages
	}
	if len(notes) > MaxStepNotesLen {
		return ErrNotesTooLong
	}

	detail := o.stepDetail(step)
	if detail.CompletedAt != nil {
		return ErrStepAlreadyCompleted
	}

	switch step {
	case StepDelivery:
		if o.StepDetails.Preparation.CompletedAt == nil {
			return ErrPreparationNotCompleted
		}
	case StepCollection:
		if o.StepDetails.Delivery.CompletedAt == nil {
			return ErrDeliveryNotCompleted
		}
	}
	// completedAt is only ever set after startedAt. Preparation starts at
	// creation; Delivery and Collection start through StartStep.
	if detail.StartedAt == nil {
		return ErrStepNotStarted
	}

	detail.CompletedAt = &now
	detail.Notes = notes
	detail.Images = images

	switch step {
	case StepPreparation:
		o.CurrentStep = StepDelivery
		o.Status = StatusPrepared
	case StepDelivery:
		o.CurrentStep = StepCollection
		o.Status = StatusDelivered
	case StepCollection:
		o.Status = StatusCompleted
	}
	o.UpdatedAt = now
	return nil
}
