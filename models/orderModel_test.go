package models_test

import (
	"testing"
	"time"

	"go-hookah-management/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestOrder() models.Order {
	return models.Order{
		ID:        primitive.NewObjectID(),
		Uuid:      "order-uuid",
		OrderType: models.OrderTypeRegular,
		Items:     models.OrderItems{Hookah: 2},
		Flavor:    models.DefaultFlavor,
		Staff: models.OrderStaff{
			PreparedBy:  "u1",
			DeliveredBy: "u2",
			CollectedBy: "u3",
		},
	}
}

func TestInitializePreparation(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	order := newTestOrder()
	order.InitializePreparation(now)

	assert.Equal(t, models.StepPreparation, order.CurrentStep)
	assert.Equal(t, models.StatusPreparing, order.Status)
	require.NotNil(t, order.StepDetails.Preparation.StartedAt)
	assert.Equal(t, now, *order.StepDetails.Preparation.StartedAt)
	assert.Equal(t, "u1", order.StepDetails.Preparation.StaffId)
	assert.Equal(t, "Order created", order.StepDetails.Preparation.Notes)
	assert.Empty(t, order.StepDetails.Preparation.Images)
	assert.Nil(t, order.StepDetails.Preparation.CompletedAt)
}

func TestStepForTask(t *testing.T) {
	t.Run("maps task types to steps case-insensitively", func(t *testing.T) {
		for taskType, step := range map[string]string{
			"Prepare":  models.StepPreparation,
			"prepare":  models.StepPreparation,
			"Delivery": models.StepDelivery,
			"DELIVERY": models.StepDelivery,
			"Collect":  models.StepCollection,
			"collect":  models.StepCollection,
		} {
			got, ok := models.StepForTask(taskType)
			require.True(t, ok, taskType)
			assert.Equal(t, step, got)
		}
	})

	t.Run("rejects unknown task types", func(t *testing.T) {
		_, ok := models.StepForTask("Inspect")
		assert.False(t, ok)
	})

	t.Run("step labels are not task types", func(t *testing.T) {
		// Clients must send "Collect", not the step label "Collection".
		_, ok := models.StepForTask("Collection")
		assert.False(t, ok)
		_, ok = models.StepForTask("Preparation")
		assert.False(t, ok)
	})
}

func TestStartStep(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	t.Run("delivery cannot start unless order is Prepared", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		snapshot := order

		err := order.StartStep(models.TaskDelivery, "u2", now.Add(time.Hour))

		require.ErrorIs(t, err, models.ErrOrderNotPrepared)
		assert.Equal(t, snapshot, order)
	})

	t.Run("delivery cannot start on a Pending order", func(t *testing.T) {
		order := newTestOrder()
		order.Status = models.StatusPending
		snapshot := order

		err := order.StartStep(models.TaskDelivery, "u2", now)

		require.ErrorIs(t, err, models.ErrOrderNotPrepared)
		assert.Equal(t, snapshot, order)
	})

	t.Run("collection cannot start unless order is Delivered", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		snapshot := order

		err := order.StartStep(models.TaskCollect, "u3", now)

		require.ErrorIs(t, err, models.ErrOrderNotDelivered)
		assert.Equal(t, snapshot, order)
	})

	t.Run("preparation never starts through StartStep", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)

		err := order.StartStep(models.TaskPrepare, "u1", now)

		require.ErrorIs(t, err, models.ErrStepAlreadyStarted)
	})

	t.Run("unknown task type is rejected", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)

		err := order.StartStep("Inspect", "u1", now)

		require.ErrorIs(t, err, models.ErrUnknownTaskType)
	})

	t.Run("delivery start records staff and moves out for delivery", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(time.Hour)))

		err := order.StartStep(models.TaskDelivery, "u2", now.Add(2*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, models.StatusOutForDelivery, order.Status)
		assert.Equal(t, models.StepDelivery, order.CurrentStep)
		assert.Equal(t, "u2", order.StepDetails.Delivery.StaffId)
		require.NotNil(t, order.StepDetails.Delivery.StartedAt)
	})

	t.Run("a step cannot be started twice", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(time.Hour)))
		require.NoError(t, order.StartStep(models.TaskDelivery, "u2", now.Add(2*time.Hour)))
		snapshot := order

		err := order.StartStep(models.TaskDelivery, "u2", now.Add(3*time.Hour))

		require.ErrorIs(t, err, models.ErrStepAlreadyStarted)
		assert.Equal(t, snapshot, order)
	})
}

func TestCompleteStep(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	t.Run("zero evidence images is rejected without mutation", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		snapshot := order

		err := order.CompleteStep(models.TaskPrepare, "done", nil, now.Add(time.Hour))

		require.ErrorIs(t, err, models.ErrEvidenceRequired)
		assert.Equal(t, snapshot, order)
	})

	t.Run("more than five images is rejected", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)

		images := []string{"1", "2", "3", "4", "5", "6"}
		err := order.CompleteStep(models.TaskPrepare, "done", images, now)

		require.ErrorIs(t, err, models.ErrTooManyImages)
	})

	t.Run("overlong notes are rejected", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)

		notes := make([]byte, models.MaxStepNotesLen+1)
		for i := range notes {
			notes[i] = 'x'
		}
		err := order.CompleteStep(models.TaskPrepare, string(notes), []string{"a.jpg"}, now)

		require.ErrorIs(t, err, models.ErrNotesTooLong)
	})

	t.Run("completing preparation advances to delivery and Prepared", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		done := now.Add(time.Hour)

		err := order.CompleteStep(models.TaskPrepare, "packed and ready", []string{"proof.jpg"}, done)

		require.NoError(t, err)
		require.NotNil(t, order.StepDetails.Preparation.CompletedAt)
		assert.Equal(t, done, *order.StepDetails.Preparation.CompletedAt)
		assert.Equal(t, "packed and ready", order.StepDetails.Preparation.Notes)
		assert.Equal(t, []string{"proof.jpg"}, order.StepDetails.Preparation.Images)
		assert.Equal(t, models.StepDelivery, order.CurrentStep)
		assert.Equal(t, models.StatusPrepared, order.Status)
	})

	t.Run("delivery cannot complete before preparation", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		snapshot := order

		err := order.CompleteStep(models.TaskDelivery, "dropped off", []string{"a.jpg"}, now)

		require.ErrorIs(t, err, models.ErrPreparationNotCompleted)
		assert.Equal(t, snapshot, order)
	})

	t.Run("collection cannot complete before delivery", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(time.Hour)))
		snapshot := order

		err := order.CompleteStep(models.TaskCollect, "picked up", []string{"b.jpg"}, now.Add(2*time.Hour))

		require.ErrorIs(t, err, models.ErrDeliveryNotCompleted)
		assert.Equal(t, snapshot, order)
	})

	t.Run("delivery cannot complete before it was started", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(time.Hour)))
		snapshot := order

		err := order.CompleteStep(models.TaskDelivery, "dropped off", []string{"b.jpg"}, now.Add(2*time.Hour))

		require.ErrorIs(t, err, models.ErrStepNotStarted)
		assert.Equal(t, snapshot, order)
		assert.Nil(t, order.StepDetails.Delivery.StartedAt)
		assert.Nil(t, order.StepDetails.Delivery.CompletedAt)
	})

	t.Run("collection cannot complete before it was started", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(1*time.Hour)))
		require.NoError(t, order.StartStep(models.TaskDelivery, "u2", now.Add(2*time.Hour)))
		require.NoError(t, order.CompleteStep(models.TaskDelivery, "handed over", []string{"b.jpg"}, now.Add(3*time.Hour)))
		snapshot := order

		err := order.CompleteStep(models.TaskCollect, "picked up", []string{"c.jpg"}, now.Add(4*time.Hour))

		require.ErrorIs(t, err, models.ErrStepNotStarted)
		assert.Equal(t, snapshot, order)
		assert.Nil(t, order.StepDetails.Collection.CompletedAt)
	})

	t.Run("a step cannot be completed twice", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(time.Hour)))

		err := order.CompleteStep(models.TaskPrepare, "again", []string{"b.jpg"}, now.Add(2*time.Hour))

		require.ErrorIs(t, err, models.ErrStepAlreadyCompleted)
	})

	t.Run("completing collection always ends Completed", func(t *testing.T) {
		order := newTestOrder()
		order.InitializePreparation(now)
		require.NoError(t, order.CompleteStep(models.TaskPrepare, "packed", []string{"a.jpg"}, now.Add(1*time.Hour)))
		require.NoError(t, order.StartStep(models.TaskDelivery, "u2", now.Add(2*time.Hour)))
		require.NoError(t, order.CompleteStep(models.TaskDelivery, "handed over", []string{"b.jpg"}, now.Add(3*time.Hour)))
		assert.Equal(t, models.StatusDelivered, order.Status)
		assert.Equal(t, models.StepCollection, order.CurrentStep)

		require.NoError(t, order.StartStep(models.TaskCollect, "u3", now.Add(4*time.Hour)))
		assert.Equal(t, models.StatusOutForCollection, order.Status)

		err := order.CompleteStep(models.TaskCollect, "equipment back", []string{"c.jpg"}, now.Add(5*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, order.Status)
		assert.Equal(t, models.StepCollection, order.CurrentStep)
		require.NotNil(t, order.StepDetails.Collection.CompletedAt)
	})
}
