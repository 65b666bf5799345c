package controllers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"go-hookah-management/database"
	"go-hookah-management/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var customerCollection *mongo.Collection = database.OpenCollection(database.Client, "customer")

type customerRequest struct {
	Name           string `json:"name"`
	Number         string `json:"number"`
	Email          string `json:"email"`
	PlotApartment  string `json:"plotApartment"`
	StreetAddress1 string `json:"streetAddress1"`
	StreetAddress2 string `json:"streetAddress2"`
	City           string `json:"city"`
	Pin            string `json:"pin"`
}

func (r *customerRequest) toCustomer() models.Customer {
	return models.Customer{
		Name:   &r.Name,
		Number: &r.Number,
		Email:  &r.Email,
		Address: models.CustomerAddress{
			PlotApartment:  r.PlotApartment,
			StreetAddress1: r.StreetAddress1,
			StreetAddress2: r.StreetAddress2,
			City:           r.City,
			Pin:            r.Pin,
		},
	}
}

func CreateCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req customerRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		customer := req.toCustomer()
		if req.Email == "" {
			customer.Email = nil
		}
		validationErr := validate.Struct(&customer)
		if validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": validationErr.Error()})
			return
		}

		// No two customers may share an email or phone number.
		or := []bson.M{{"number": req.Number}}
		if req.Email != "" {
			or = append(or, bson.M{"email": req.Email})
		}
		count, err := customerCollection.CountDocuments(ctx, bson.M{"$or": or})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Customer creation failed", "error": err.Error()})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Customer with this email or phone already exists"})
			return
		}

		customer.ID = primitive.NewObjectID()
		customer.CreatedAt, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		customer.UpdatedAt = customer.CreatedAt

		_, err = customerCollection.InsertOne(ctx, customer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Customer creation failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": 201, "message": "Customer created successfully", "data": customer})
	}
}

func GetCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}

		query := bson.M{}
		if search := c.Query("search"); search != "" {
			regex := bson.M{"$regex": search, "$options": "i"}
			query = bson.M{"$or": []bson.M{
				{"name": regex},
				{"email": regex},
				{"number": regex},
			}}
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(int64(limit)).
			SetSkip(int64((page - 1) * limit))

		cursor, err := customerCollection.Find(ctx, query, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch customers", "error": err.Error()})
			return
		}
		customers := []models.Customer{}
		if err := cursor.All(ctx, &customers); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch customers", "error": err.Error()})
			return
		}

		count, err := customerCollection.CountDocuments(ctx, query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to fetch customers", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":        200,
			"data":        customers,
			"total":       count,
			"totalPages":  int(math.Ceil(float64(count) / float64(limit))),
			"currentPage": page,
		})
	}
}

func GetCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		customerId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid customer id"})
			return
		}
		var customer models.Customer
		err = customerCollection.FindOne(ctx, bson.M{"_id": customerId}).Decode(&customer)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Customer not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "data": customer})
	}
}

func UpdateCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		customerId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid customer id"})
			return
		}
		var req customerRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		customer := req.toCustomer()
		if req.Email == "" {
			customer.Email = nil
		}
		validationErr := validate.Struct(&customer)
		if validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": validationErr.Error()})
			return
		}

		updatedAt, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj := bson.D{
			{Key: "name", Value: customer.Name},
			{Key: "number", Value: customer.Number},
			{Key: "email", Value: customer.Email},
			{Key: "address", Value: customer.Address},
			{Key: "updatedAt", Value: updatedAt},
		}

		var updated models.Customer
		err = customerCollection.FindOneAndUpdate(
			ctx,
			bson.M{"_id": customerId},
			bson.D{{Key: "$set", Value: updateObj}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Customer not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "Customer updated successfully", "data": updated})
	}
}

func DeleteCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		customerId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "invalid customer id"})
			return
		}
		result, err := customerCollection.DeleteOne(ctx, bson.M{"_id": customerId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to delete customer", "error": err.Error()})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "Customer not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "Customer deleted successfully"})
	}
}
