package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-hookah-management/database"
	"go-hookah-management/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var userCollection *mongo.Collection = database.OpenCollection(database.Client, "user")

func AddUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var user models.User
		if err := c.BindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		if user.Role == nil {
			role := models.RoleAdmin
			user.Role = &role
		}
		validationErr := validate.Struct(&user)
		if validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": validationErr.Error()})
			return
		}

		count, err := userCollection.CountDocuments(ctx, bson.M{"email": user.Email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "error occured while checking for the email"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Email already exists"})
			return
		}

		password := HashPassword(*user.Password)
		user.Password = &password
		user.ID = primitive.NewObjectID()
		user.Uuid = uuid.NewString()
		user.Status = "active"
		user.AssignedOrders = []models.Assignment{}
		user.CreatedAt, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		user.UpdatedAt = user.CreatedAt

		_, err = userCollection.InsertOne(ctx, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "User item was not created"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": 200, "message": "User registered successfully"})
	}
}

func GetUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		cursor, err := userCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to get users", "data": []models.User{}})
			return
		}
		users := []models.User{}
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to get users", "data": []models.User{}})
			return
		}
		if len(users) == 0 {
			// No rows is not an error for list endpoints.
			c.JSON(http.StatusOK, gin.H{"code": 404, "message": "No users found", "data": []models.User{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "Users Fetched", "data": users})
	}
}

func GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		userUuid := c.Param("uuid")
		var user models.User
		err := userCollection.FindOne(ctx, bson.M{"uuid": userUuid}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "User not found", "data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "User fetched successfully", "data": user})
	}
}

func UpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		userUuid := c.Param("uuid")
		var user models.User
		if err := c.BindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}

		var updateObj primitive.D
		if user.FullName != nil {
			updateObj = append(updateObj, bson.E{Key: "fullName", Value: user.FullName})
		}
		if user.Email != nil {
			updateObj = append(updateObj, bson.E{Key: "email", Value: user.Email})
		}
		if user.Phone != nil {
			updateObj = append(updateObj, bson.E{Key: "phone", Value: user.Phone})
		}
		if user.Role != nil {
			updateObj = append(updateObj, bson.E{Key: "role", Value: user.Role})
		}
		if user.Status != "" {
			updateObj = append(updateObj, bson.E{Key: "status", Value: user.Status})
		}
		// Credentials are rehashed only when a new password is sent.
		if user.Password != nil {
			password := HashPassword(*user.Password)
			updateObj = append(updateObj, bson.E{Key: "password", Value: password})
		}
		updatedAt, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updatedAt", Value: updatedAt})

		var updated models.User
		err := userCollection.FindOneAndUpdate(
			ctx,
			bson.M{"uuid": userUuid},
			bson.D{{Key: "$set", Value: updateObj}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "User not found", "data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "User updated successfully", "data": updated})
	}
}

func DeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		userUuid := c.Param("uuid")
		var deleted models.User
		err := userCollection.FindOneAndDelete(ctx, bson.M{"uuid": userUuid}).Decode(&deleted)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "User not found", "data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "User deleted successfully", "data": deleted})
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
var clients = make(map[*websocket.Conn]bool)
var mu sync.Mutex

func HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			fmt.Println("Error during connection upgrade:", err)
			return
		}
		defer conn.Close()

		mu.Lock()
		clients[conn] = true
		mu.Unlock()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				mu.Lock()
				delete(clients, conn)
				mu.Unlock()
				break
			}
		}
	}
}

type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// notifyClients pushes a "newOrder" event to every connected dashboard.
func notifyClients(order models.Order) {
	mu.Lock()
	defer mu.Unlock()
	sendMessageToAllClients(Message{Event: "newOrder", Payload: order})
}

// notifyStepUpdate pushes a "stepUpdate" event whenever an order's workflow
// state changes.
func notifyStepUpdate(order models.Order) {
	mu.Lock()
	defer mu.Unlock()
	sendMessageToAllClients(Message{Event: "stepUpdate", Payload: order})
}

func sendMessageToAllClients(message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		fmt.Println("Error marshaling message:", err)
		return
	}
	for client := range clients {
		err := client.WriteMessage(websocket.TextMessage, messageBytes)
		if err != nil {
			fmt.Println("Error writing message:", err)
			client.Close()
			delete(clients, client)
		}
	}
}
