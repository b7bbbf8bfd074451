package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/bartab-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateValidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.products.CreateProduct(context.Background(), &CreateProductInput{Price: dec("-1")})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)
	assert.Len(t, appErr.Errors, 3)

	env.product(t, "Stout", "Beer", "8")
	_, err = env.products.CreateProduct(context.Background(), &CreateProductInput{Name: "stout", Category: "Beer", Price: dec("9")})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	free, err := env.products.CreateProduct(context.Background(), &CreateProductInput{Name: "Water", Category: "Soft", Price: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, free.Price.IsZero())
}

func TestProductService_UpdatePropagatesToOpenTabsOnly(t *testing.T) {
	env := newTestEnv(t)
	stout := env.product(t, "Stout", "Beer", "8")
	settled := env.client(t, "Ada")
	open := env.client(t, "Grace")

	session := env.visit(t, settled.ID, time.Hour, stout)
	env.add(t, open.ID, stout, stout)

	newPrice := dec("9.5")
	newName := "Imperial Stout"
	res, err := env.products.UpdateProduct(context.Background(), &UpdateProductInput{ID: stout.ID, Name: &newName, Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 1, res.LinesUpdated)

	openTab, _ := env.clients.GetClient(context.Background(), open.ID)
	require.Len(t, openTab.Items, 1)
	assert.Equal(t, "Imperial Stout", openTab.Items[0].Name)
	assert.True(t, openTab.Total().Equal(dec("19")))

	history, _ := env.clients.GetClient(context.Background(), settled.ID)
	assert.Equal(t, "Stout", history.History[0].Purchases[0].Name)
	assert.True(t, history.History[0].Purchases[0].UnitPrice.Equal(dec("8")))
	assert.True(t, session.Total().Equal(dec("8")))

	// adding again after the rename still lands on the same line
	got := env.add(t, open.ID, res.Product)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestProductService_UpdateRejectsNegativePrice(t *testing.T) {
	env := newTestEnv(t)
	stout := env.product(t, "Stout", "Beer", "8")

	price := dec("-0.01")
	_, err := env.products.UpdateProduct(context.Background(), &UpdateProductInput{ID: stout.ID, Price: &price})
	assert.Equal(t, 422, apperror.GetAppError(err).Code)

	stored, _ := env.products.GetProduct(context.Background(), stout.ID)
	assert.True(t, stored.Price.Equal(dec("8")))
}

func TestProductService_DeleteKeepsTabSnapshot(t *testing.T) {
	env := newTestEnv(t)
	stout := env.product(t, "Stout", "Beer", "8")
	c := env.client(t, "Ada")
	env.add(t, c.ID, stout)

	require.NoError(t, env.products.DeleteProduct(context.Background(), stout.ID))
	assert.Equal(t, 404, apperror.GetAppError(env.products.DeleteProduct(context.Background(), stout.ID)).Code)

	stored, _ := env.clients.GetClient(context.Background(), c.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Stout", stored.Items[0].Name)
}
