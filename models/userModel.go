package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff roles.
const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)

// Assignment statuses.
const (
	AssignmentPending   = "Pending"
	AssignmentStarted   = "Started"
	AssignmentCompleted = "Completed"
)

// Assignment is one entry of a staff member's task ledger: the order they are
// responsible for, which task of it, and how far along they are.
type Assignment struct {
	Order    primitive.ObjectID `json:"order" bson:"order"`
	TaskType string             `json:"taskType" bson:"taskType"`
	Status   string             `json:"status" bson:"status"`
}

type User struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Uuid           string             `json:"uuid" bson:"uuid"`
	FullName       *string            `json:"fullName" bson:"fullName" validate:"required,min=2,max=100"`
	Email          *string            `json:"email" bson:"email" validate:"email,required"`
	Phone          *string            `json:"phone" bson:"phone" validate:"required"`
	Password       *string            `json:"password,omitempty" bson:"password" validate:"required,min=6"`
	Role           *string            `json:"role" bson:"role" validate:"required,eq=Admin|eq=Employee"`
	AssignedOrders []Assignment       `json:"assignedOrders" bson:"assignedOrders"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// FindAssignment returns the ledger entry for (order, taskType), or nil. Task
// type matching is case-insensitive.
func (u *User) FindAssignment(orderID primitive.ObjectID, taskType string) *Assignment {
	for i := range u.AssignedOrders {
		a := &u.AssignedOrders[i]
		if a.Order == orderID && strings.EqualFold(a.TaskType, taskType) {
			return a
		}
	}
	return nil
}

// AppendAssignment adds a Pending ledger entry. A user holds at most one
// assignment per (order, taskType); duplicates are ignored.
func (u *User) AppendAssignment(orderID primitive.ObjectID, taskType string) {
	if u.FindAssignment(orderID, taskType) != nil {
		return
	}
	u.AssignedOrders = append(u.AssignedOrders, Assignment{
		Order:    orderID,
		TaskType: taskType,
		Status:   AssignmentPending,
	})
}

// MarkAssignmentStatus mutates the matching ledger entry in place and reports
// whether it was found.
func (u *User) MarkAssignmentStatus(orderID primitive.ObjectID, taskType string, status string) bool {
	a := u.FindAssignment(orderID, taskType)
	if a == nil {
		return false
	}
	a.Status = status
	return true
}
