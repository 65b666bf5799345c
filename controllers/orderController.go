package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go-hookah-management/database"
	"go-hookah-management/helpers"
	"go-hookah-management/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var orderCollection *mongo.Collection = database.OpenCollection(database.Client, "order")

// ORDER_STAFF_POLICY decides whether deliveredBy/collectedBy are mandatory:
// "all" (default) requires the full staff triple for every order type,
// "regular" requires it only for Regular Order.
var staffPolicy = os.Getenv("ORDER_STAFF_POLICY")

func requiresFullStaff(orderType string) bool {
	if staffPolicy == "regular" {
		return orderType == models.OrderTypeRegular
	}
	return true
}

type orderRequest struct {
	Customer  string             `json:"customer"`
	OrderType string             `json:"orderType"`
	Items     models.OrderItems  `json:"items"`
	Flavor    string             `json:"flavor"`
	Extras    models.OrderExtras `json:"extras"`
	Staff     models.OrderStaff  `json:"staff"`
	Address   models.Address     `json:"address"`
}

type createdOrderResponse struct {
	models.Order
	CustomerName string `json:"customerName"`
}

type populatedCustomer struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   *string            `json:"name"`
	Email  *string            `json:"email,omitempty"`
	Number *string            `json:"number"`
}

// orderWithCustomer mirrors the populated order documents the dashboard was
// built against: the customer reference is replaced by the customer's display
// details. The outer field shadows the embedded ObjectID in the JSON output.
type orderWithCustomer struct {
	models.Order
	Customer *populatedCustomer `json:"customer"`
}

func toPopulatedCustomer(c models.Customer) *populatedCustomer {
	return &populatedCustomer{ID: c.ID, Name: c.Name, Email: c.Email, Number: c.Number}
}

func populateOrderCustomers(ctx context.Context, orders []models.Order) ([]orderWithCustomer, error) {
	customerIds := make([]primitive.ObjectID, 0, len(orders))
	seen := map[primitive.ObjectID]bool{}
	for _, o := range orders {
		if !seen[o.Customer] {
			seen[o.Customer] = true
			customerIds = append(customerIds, o.Customer)
		}
	}

	customersById := map[primitive.ObjectID]models.Customer{}
	if len(customerIds) > 0 {
		cursor, err := customerCollection.Find(ctx, bson.M{"_id": bson.M{"$in": customerIds}})
		if err != nil {
			return nil, err
		}
		var customers []models.Customer
		if err := cursor.All(ctx, &customers); err != nil {
			return nil, err
		}
		for _, c := range customers {
			customersById[c.ID] = c
		}
	}

	populated := make([]orderWithCustomer, 0, len(orders))
	for _, o := range orders {
		entry := orderWithCustomer{Order: o}
		if c, ok := customersById[o.Customer]; ok {
			entry.Customer = toPopulatedCustomer(c)
		}
		populated = append(populated, entry)
	}
	return populated, nil
}

// populateOrderCustomer enriches a single order; an unresolvable customer
// reference leaves the details null rather than failing the request.
func populateOrderCustomer(ctx context.Context, order models.Order) orderWithCustomer {
	entry := orderWithCustomer{Order: order}
	var customer models.Customer
	if err := customerCollection.FindOne(ctx, bson.M{"_id": order.Customer}).Decode(&customer); err == nil {
		entry.Customer = toPopulatedCustomer(customer)
	}
	return entry
}

func CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req orderRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		if req.OrderType == "" {
			req.OrderType = models.OrderTypeRegular
		}
		if req.Flavor == "" {
			req.Flavor = models.DefaultFlavor
		}

		if req.Customer == "" || req.Staff.PreparedBy == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Missing required fields"})
			return
		}
		if requiresFullStaff(req.OrderType) && (req.Staff.DeliveredBy == "" || req.Staff.CollectedBy == "") {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Missing required fields"})
			return
		}

		customerId, err := primitive.ObjectIDFromHex(req.Customer)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid customer id"})
			return
		}
		var customer models.Customer
		if err := customerCollection.FindOne(ctx, bson.M{"_id": customerId}).Decode(&customer); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Customer not found"})
			return
		}

		order := models.Order{
			ID:        primitive.NewObjectID(),
			Uuid:      uuid.NewString(),
			Customer:  customerId,
			OrderType: req.OrderType,
			Items:     req.Items,
			Flavor:    req.Flavor,
			Extras:    req.Extras,
			Staff:     req.Staff,
			Address:   req.Address,
		}
		validationErr := validate.Struct(&order)
		if validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": validationErr.Error()})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		order.CreatedAt = now
		order.UpdatedAt = now
		order.InitializePreparation(now)

		// The counter increment is atomic and happens before the insert, so
		// a numbering failure aborts creation with nothing persisted.
		orderNumber, err := helpers.NextOrderNumber(ctx, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to create order", "error": err.Error()})
			return
		}
		order.OrderNumber = orderNumber

		if _, err := orderCollection.InsertOne(ctx, order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to create order", "error": err.Error()})
			return
		}

		// Ledger pushes are separate per-user writes; a failure here leaves
		// the order with incomplete assignments and is reported as such.
		assignments := []struct {
			staffUuid string
			taskType  string
		}{
			{req.Staff.PreparedBy, models.TaskPrepare},
			{req.Staff.DeliveredBy, models.TaskDelivery},
			{req.Staff.CollectedBy, models.TaskCollect},
		}
		for _, a := range assignments {
			if a.staffUuid == "" {
				continue
			}
			result, err := userCollection.UpdateOne(
				ctx,
				bson.M{"uuid": a.staffUuid},
				bson.M{"$push": bson.M{"assignedOrders": models.Assignment{
					Order:    order.ID,
					TaskType: a.taskType,
					Status:   models.AssignmentPending,
				}}},
			)
			if err != nil || result.MatchedCount == 0 {
				c.JSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": fmt.Sprintf("order %s created but assigning %s to %s failed", order.OrderNumber, a.taskType, a.staffUuid),
				})
				return
			}
		}

		notifyClients(order)

		c.JSON(http.StatusCreated, gin.H{
			"code":    200,
			"success": true,
			"message": "Order created successfully",
			"data":    createdOrderResponse{Order: order, CustomerName: *customer.Name},
		})
	}
}

func GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		query := bson.M{}
		if status := c.Query("status"); status != "" {
			query["status"] = status
		}

		sortDir := -1
		if c.Query("sort") == "oldest" {
			sortDir = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 {
			limit = 20
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: sortDir}}).
			SetLimit(int64(limit))

		cursor, err := orderCollection.Find(ctx, query, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch orders", "error": err.Error()})
			return
		}
		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch orders", "error": err.Error()})
			return
		}

		populated, err := populateOrderCustomers(ctx, orders)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch orders", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"success": true,
			"count":   len(populated),
			"data":    populated,
			"message": "All orders Fetched Successfully",
		})
	}
}

func GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orderId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid order id"})
			return
		}
		var order models.Order
		err = orderCollection.FindOne(ctx, bson.M{"_id": orderId}).Decode(&order)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "Order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "data": populateOrderCustomer(ctx, order), "message": "Order Fetched"})
	}
}

func GetOrderStatusCounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		pending, err := orderCollection.CountDocuments(ctx, bson.M{"status": models.StatusPending})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch order status counts", "error": err.Error()})
			return
		}
		// "out-for-delivery" is the label older app builds wrote.
		processing, err := orderCollection.CountDocuments(ctx, bson.M{"status": bson.M{"$in": []string{
			models.StatusPreparing,
			models.StatusPrepared,
			models.StatusOutForDelivery,
			"out-for-delivery",
			models.StatusDelivered,
			models.StatusOutForCollection,
		}}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch order status counts", "error": err.Error()})
			return
		}
		completed, err := orderCollection.CountDocuments(ctx, bson.M{"status": models.StatusCompleted})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch order status counts", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"success": true,
			"data": gin.H{
				"pending":    pending,
				"processing": processing,
				"completed":  completed,
				"total":      pending + processing + completed,
			},
			"message": "Order status counts fetched successfully",
		})
	}
}

func UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		orderId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid order id"})
			return
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}

		validStatuses := []string{
			models.StatusPending,
			models.StatusPreparing,
			models.StatusPrepared,
			models.StatusOutForDelivery,
			models.StatusDelivered,
			models.StatusOutForCollection,
			models.StatusCompleted,
		}
		valid := false
		for _, s := range validStatuses {
			if body.Status == s {
				valid = true
				break
			}
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid status value"})
			return
		}

		changedBy := c.GetString("uuid")
		var updated models.Order
		err = orderCollection.FindOneAndUpdate(
			ctx,
			bson.M{"_id": orderId},
			bson.M{
				"$set": bson.M{"status": body.Status, "updatedAt": time.Now()},
				"$push": bson.M{"statusHistory": models.StatusChange{
					Status:    body.Status,
					ChangedBy: changedBy,
					Timestamp: time.Now(),
				}},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to update order status", "error": err.Error()})
			return
		}

		notifyStepUpdate(updated)
		c.JSON(http.StatusOK, gin.H{"code": 200, "success": true, "message": "Order status updated successfully", "data": populateOrderCustomer(ctx, updated)})
	}
}

type assignedOrderResponse struct {
	models.Order
	TaskType   string `json:"taskType"`
	TaskStatus string `json:"taskStatus"`
}

// GetOrdersByStaffUuid returns every order on a staff member's ledger, each
// annotated with that member's task type and task status.
func GetOrdersByStaffUuid() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		staffUuid := c.Param("uuid")
		var user models.User
		err := userCollection.FindOne(ctx, bson.M{"uuid": staffUuid}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "User not found", "data": nil})
			return
		}

		orderIds := make([]primitive.ObjectID, 0, len(user.AssignedOrders))
		for _, a := range user.AssignedOrders {
			orderIds = append(orderIds, a.Order)
		}

		ordersById := map[primitive.ObjectID]models.Order{}
		if len(orderIds) > 0 {
			cursor, err := orderCollection.Find(ctx, bson.M{"_id": bson.M{"$in": orderIds}})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch orders", "error": err.Error()})
				return
			}
			var orders []models.Order
			if err := cursor.All(ctx, &orders); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch orders", "error": err.Error()})
				return
			}
			for _, o := range orders {
				ordersById[o.ID] = o
			}
		}

		assigned := []assignedOrderResponse{}
		for _, a := range user.AssignedOrders {
			order, ok := ordersById[a.Order]
			if !ok {
				continue
			}
			assigned = append(assigned, assignedOrderResponse{
				Order:      order,
				TaskType:   a.TaskType,
				TaskStatus: a.Status,
			})
		}

		c.JSON(http.StatusOK, gin.H{"code": 200, "count": len(assigned), "data": assigned, "message": "Assigned orders fetched successfully"})
	}
}

// workflowErrorStatus maps a state-machine rejection to the HTTP status the
// clients expect: assignment and step-order violations are 403, input
// problems are 400.
func workflowErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrEvidenceRequired),
		errors.Is(err, models.ErrTooManyImages),
		errors.Is(err, models.ErrNotesTooLong),
		errors.Is(err, models.ErrUnknownTaskType):
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}

func loadOrderAndStaff(ctx context.Context, orderIdHex string, staffUuid string) (*models.Order, *models.User, int, string) {
	orderId, err := primitive.ObjectIDFromHex(orderIdHex)
	if err != nil {
		return nil, nil, http.StatusBadRequest, "invalid order id"
	}
	var order models.Order
	if err := orderCollection.FindOne(ctx, bson.M{"_id": orderId}).Decode(&order); err != nil {
		return nil, nil, http.StatusNotFound, "Order not found"
	}
	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"uuid": staffUuid}).Decode(&user); err != nil {
		return nil, nil, http.StatusNotFound, "User not found"
	}
	return &order, &user, 0, ""
}

func persistOrderWorkflow(ctx context.Context, order *models.Order) error {
	_, err := orderCollection.UpdateOne(
		ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"currentStep": order.CurrentStep,
			"status":      order.Status,
			"stepDetails": order.StepDetails,
			"updatedAt":   order.UpdatedAt,
		}},
	)
	return err
}

func persistUserLedger(ctx context.Context, user *models.User) error {
	_, err := userCollection.UpdateOne(
		ctx,
		bson.M{"uuid": user.Uuid},
		bson.M{"$set": bson.M{
			"assignedOrders": user.AssignedOrders,
			"updatedAt":      time.Now(),
		}},
	)
	return err
}

// StartOrder begins a workflow step for the assigned staff member.
func StartOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req struct {
			OrderId string `json:"orderId"`
			Step    string `json:"step"`
			StaffId string `json:"staffId"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		if req.OrderId == "" || req.Step == "" || req.StaffId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Missing required fields"})
			return
		}
		// Reject bad step values (e.g. the step label "Collection" instead
		// of the task type "Collect") before the assignment lookup can turn
		// them into a misleading 403.
		if _, ok := models.StepForTask(req.Step); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": models.ErrUnknownTaskType.Error()})
			return
		}

		order, user, errStatus, errMsg := loadOrderAndStaff(ctx, req.OrderId, req.StaffId)
		if errStatus != 0 {
			c.JSON(errStatus, gin.H{"code": errStatus, "message": errMsg})
			return
		}

		// The staff member must hold the matching assignment regardless of
		// their global role.
		assignment := user.FindAssignment(order.ID, req.Step)
		if assignment == nil {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "You are not assigned to this task"})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		if err := order.StartStep(req.Step, req.StaffId, now); err != nil {
			status := workflowErrorStatus(err)
			c.JSON(status, gin.H{"code": status, "message": err.Error()})
			return
		}
		user.MarkAssignmentStatus(order.ID, req.Step, models.AssignmentStarted)

		if err := persistOrderWorkflow(ctx, order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to start step", "error": err.Error()})
			return
		}
		if err := persistUserLedger(ctx, user); err != nil {
			// Order already advanced; do not pretend the whole operation
			// succeeded.
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "step started but assignment status update failed", "error": err.Error()})
			return
		}

		notifyStepUpdate(*order)
		c.JSON(http.StatusOK, gin.H{"code": 200, "success": true, "message": fmt.Sprintf("%s step started", order.CurrentStep), "data": order})
	}
}

// UpdateOrder completes a workflow step: it uploads the evidence images,
// records the step detail and advances the order. Uploaded images are not
// rolled back if the database write fails afterwards.
func UpdateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		orderId := c.PostForm("orderId")
		step := c.PostForm("step")
		staffId := c.PostForm("staffId")
		notes := c.PostForm("notes")
		files := form.File["images"]

		if orderId == "" || step == "" || staffId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Missing required fields"})
			return
		}
		if _, ok := models.StepForTask(step); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": models.ErrUnknownTaskType.Error()})
			return
		}
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": models.ErrEvidenceRequired.Error()})
			return
		}
		if len(files) > models.MaxStepImages {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": models.ErrTooManyImages.Error()})
			return
		}

		order, user, errStatus, errMsg := loadOrderAndStaff(ctx, orderId, staffId)
		if errStatus != 0 {
			c.JSON(errStatus, gin.H{"code": errStatus, "message": errMsg})
			return
		}

		assignment := user.FindAssignment(order.ID, step)
		if assignment == nil {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "You are not assigned to this task"})
			return
		}

		images, err := helpers.UploadFiles(files)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to upload evidence images", "error": err.Error()})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		if err := order.CompleteStep(step, notes, images, now); err != nil {
			status := workflowErrorStatus(err)
			c.JSON(status, gin.H{"code": status, "message": err.Error()})
			return
		}
		user.MarkAssignmentStatus(order.ID, step, models.AssignmentCompleted)

		if err := persistOrderWorkflow(ctx, order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to complete step", "error": err.Error()})
			return
		}
		if err := persistUserLedger(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "step completed but assignment status update failed", "error": err.Error()})
			return
		}

		notifyStepUpdate(*order)
		c.JSON(http.StatusOK, gin.H{"code": 200, "success": true, "message": "Order updated successfully", "data": order})
	}
}
