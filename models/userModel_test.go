package models_test

import (
	"testing"

	"go-hookah-management/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAssignmentLedger(t *testing.T) {
	orderID := primitive.NewObjectID()
	otherOrderID := primitive.NewObjectID()

	t.Run("append creates a Pending entry", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskPrepare)

		require.Len(t, user.AssignedOrders, 1)
		assert.Equal(t, models.AssignmentPending, user.AssignedOrders[0].Status)
		assert.Equal(t, models.TaskPrepare, user.AssignedOrders[0].TaskType)
	})

	t.Run("at most one assignment per order and task type", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskPrepare)
		user.AppendAssignment(orderID, models.TaskPrepare)
		user.AppendAssignment(orderID, "prepare")

		assert.Len(t, user.AssignedOrders, 1)
	})

	t.Run("same order may carry different task types", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskPrepare)
		user.AppendAssignment(orderID, models.TaskDelivery)
		user.AppendAssignment(otherOrderID, models.TaskPrepare)

		assert.Len(t, user.AssignedOrders, 3)
	})

	t.Run("find matches task type case-insensitively", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskCollect)

		assert.NotNil(t, user.FindAssignment(orderID, "collect"))
		assert.NotNil(t, user.FindAssignment(orderID, "COLLECT"))
		assert.Nil(t, user.FindAssignment(orderID, models.TaskPrepare))
		assert.Nil(t, user.FindAssignment(otherOrderID, models.TaskCollect))
	})

	t.Run("mark mutates the matching entry in place", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskDelivery)

		ok := user.MarkAssignmentStatus(orderID, models.TaskDelivery, models.AssignmentStarted)

		require.True(t, ok)
		assert.Equal(t, models.AssignmentStarted, user.AssignedOrders[0].Status)
	})

	t.Run("mark reports a missing entry", func(t *testing.T) {
		var user models.User
		user.AppendAssignment(orderID, models.TaskDelivery)

		ok := user.MarkAssignmentStatus(orderID, models.TaskCollect, models.AssignmentStarted)

		assert.False(t, ok)
		assert.Equal(t, models.AssignmentPending, user.AssignedOrders[0].Status)
	})
}
