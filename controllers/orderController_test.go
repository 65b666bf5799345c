package controllers

import (
	"encoding/json"
	"testing"

	"go-hookah-management/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderWithCustomerMarshaling(t *testing.T) {
	customerId := primitive.NewObjectID()
	order := models.Order{
		ID:          primitive.NewObjectID(),
		Uuid:        "order-uuid",
		OrderNumber: "05/03/2024-1",
		Customer:    customerId,
		OrderType:   models.OrderTypeRegular,
	}

	t.Run("customer details replace the raw reference", func(t *testing.T) {
		name := "Asha Verma"
		email := "asha@example.com"
		number := "9007453390"
		entry := orderWithCustomer{
			Order: order,
			Customer: toPopulatedCustomer(models.Customer{
				ID:     customerId,
				Name:   &name,
				Email:  &email,
				Number: &number,
			}),
		}

		raw, err := json.Marshal(entry)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		customer, ok := decoded["customer"].(map[string]interface{})
		require.True(t, ok, "customer should be the populated document, not the bare id")
		assert.Equal(t, name, customer["name"])
		assert.Equal(t, email, customer["email"])
		assert.Equal(t, number, customer["number"])
		assert.Equal(t, customerId.Hex(), customer["_id"])
		assert.Equal(t, "05/03/2024-1", decoded["orderNumber"])
	})

	t.Run("an unresolved customer reference stays null", func(t *testing.T) {
		entry := orderWithCustomer{Order: order}

		raw, err := json.Marshal(entry)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Nil(t, decoded["customer"])
	})
}
