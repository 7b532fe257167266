package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doJSON sends a JSON request against the test server and returns the status
// code and raw body.
func doJSON(t *testing.T, env *TestEnv, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func checkoutPayload(productID uuid.UUID, quantity int, method model.PaymentMethod) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": productID, "quantity": quantity, "size": "M", "color": "blue"},
		},
		"shipping": map[string]any{
			"fullName":     "Asha Rao",
			"addressLine1": "12 MG Road",
			"city":         "Bengaluru",
			"state":        "Karnataka",
			"postalCode":   "560001",
			"country":      "India",
			"phone":        "+91 98450 12345",
		},
		"paymentMethod": method,
	}
}

func TestRegisterLoginCheckoutFlow(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Classic Cotton Kurta", 149900, 10)

	// Register.
	status, body := doJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Asha Rao",
		"email":    "Asha@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var registered model.AuthResponse
	require.NoError(t, json.Unmarshal(body, &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "asha@example.com", registered.User.Email)

	// Login with the same credentials.
	status, body = doJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var loggedIn model.AuthResponse
	require.NoError(t, json.Unmarshal(body, &loggedIn))
	token := loggedIn.Token

	// Checkout two units with the mock payment handler.
	status, body = doJSON(t, env, http.MethodPost, "/api/checkout", token,
		checkoutPayload(product.ID, 2, model.PaymentMethodMock))
	require.Equal(t, http.StatusCreated, status, string(body))

	var order model.Order
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, model.StatusPaid, order.Status)
	assert.Equal(t, int64(299800), order.TotalCents)
	assert.Equal(t, "INR", order.Currency)
	require.NotNil(t, order.PaymentRef)
	assert.True(t, strings.HasPrefix(*order.PaymentRef, "MOCK_"))
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(149900), order.Items[0].UnitPriceCents)

	// Stock was reserved.
	stored, err := env.Products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Stock)

	// The order shows up in the customer's list and detail endpoints.
	status, body = doJSON(t, env, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, status)

	var page model.OrderPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, order.ID, page.Orders[0].ID)

	status, body = doJSON(t, env, http.MethodGet, "/api/orders/"+order.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)

	var fetched model.Order
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, order.ID, fetched.ID)
}

func TestCheckout_RequiresAuthentication(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Silk Saree", 499900, 5)

	status, _ := doJSON(t, env, http.MethodPost, "/api/checkout", "",
		checkoutPayload(product.ID, 1, model.PaymentMethodMock))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckout_GatewayFailureLeavesOrderPending(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Nehru Jacket", 299900, 4)
	_, token := SeedUser(t, env, model.RoleCustomer)

	status, body := doJSON(t, env, http.MethodPost, "/api/checkout", token,
		checkoutPayload(product.ID, 1, model.PaymentMethodGateway))
	require.Equal(t, http.StatusBadGateway, status, string(body))

	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, model.ErrCodePaymentFailed, errResp.Error)

	ctx := context.Background()

	// The order survived the payment failure as PENDING with no reference,
	// and the stock reservation held.
	page, err := env.Orders.ListAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, model.StatusPending, page.Orders[0].Status)
	assert.Nil(t, page.Orders[0].PaymentRef)

	stored, err := env.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Silk Saree", 499900, 2)
	_, token := SeedUser(t, env, model.RoleCustomer)

	status, body := doJSON(t, env, http.MethodPost, "/api/checkout", token,
		checkoutPayload(product.ID, 3, model.PaymentMethodMock))
	require.Equal(t, http.StatusConflict, status, string(body))

	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, model.ErrCodeInsufficientStock, errResp.Error)

	ctx := context.Background()

	// Nothing was written.
	page, err := env.Orders.ListAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	stored, err := env.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)
}

// TestCheckout_ConcurrentNeverOversells fires more simultaneous checkouts
// than there is stock and verifies exactly stock-many succeed.
func TestCheckout_ConcurrentNeverOversells(t *testing.T) {
	env := SetupEnv(t)

	const stock = 5
	const buyers = 10
	product := SeedProduct(t, env, "Limited Kurta", 149900, stock)

	tokens := make([]string, buyers)
	for i := range tokens {
		_, tokens[i] = SeedUser(t, env, model.RoleCustomer)
	}

	statuses := make([]int, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = doJSON(t, env, http.MethodPost, "/api/checkout", tokens[i],
				checkoutPayload(product.ID, 1, model.PaymentMethodMock))
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Fatalf("unexpected status %d", s)
		}
	}
	assert.Equal(t, stock, created)
	assert.Equal(t, buyers-stock, conflicts)

	ctx := context.Background()

	stored, err := env.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	page, err := env.Orders.ListAll(ctx, buyers, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(stock), page.Total)
}

// TestCheckout_PriceSnapshot verifies a later catalogue price change does not
// alter an existing order.
func TestCheckout_PriceSnapshot(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Cotton Kurta", 149900, 10)
	_, token := SeedUser(t, env, model.RoleCustomer)

	status, body := doJSON(t, env, http.MethodPost, "/api/checkout", token,
		checkoutPayload(product.ID, 1, model.PaymentMethodMock))
	require.Equal(t, http.StatusCreated, status, string(body))

	var order model.Order
	require.NoError(t, json.Unmarshal(body, &order))

	ctx := context.Background()
	product.PriceCents = 999900
	require.NoError(t, env.Products.Update(ctx, product))

	stored, err := env.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(149900), stored.Items[0].UnitPriceCents)
	assert.Equal(t, int64(149900), stored.TotalCents)
}

func TestOrders_OwnershipIsolation(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Cotton Kurta", 149900, 10)
	_, aliceToken := SeedUser(t, env, model.RoleCustomer)
	_, bobToken := SeedUser(t, env, model.RoleCustomer)

	status, body := doJSON(t, env, http.MethodPost, "/api/checkout", aliceToken,
		checkoutPayload(product.ID, 1, model.PaymentMethodMock))
	require.Equal(t, http.StatusCreated, status)

	var order model.Order
	require.NoError(t, json.Unmarshal(body, &order))

	// Bob cannot read Alice's order and does not see it in his list.
	status, _ = doJSON(t, env, http.MethodGet, "/api/orders/"+order.ID.String(), bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, env, http.MethodGet, "/api/orders", bobToken, nil)
	require.Equal(t, http.StatusOK, status)

	var page model.OrderPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(0), page.Total)
}

func TestAdmin_OrderLifecycleAndAnalytics(t *testing.T) {
	env := SetupEnv(t)
	product := SeedProduct(t, env, "Silk Saree", 499900, 10)
	_, customerToken := SeedUser(t, env, model.RoleCustomer)
	_, adminToken := SeedUser(t, env, model.RoleAdmin)

	status, body := doJSON(t, env, http.MethodPost, "/api/checkout", customerToken,
		checkoutPayload(product.ID, 1, model.PaymentMethodMock))
	require.Equal(t, http.StatusCreated, status)

	var order model.Order
	require.NoError(t, json.Unmarshal(body, &order))
	require.Equal(t, model.StatusPaid, order.Status)

	statusPath := fmt.Sprintf("/api/admin/orders/%s/status", order.ID)

	// Customers are shut out of the admin surface.
	status, _ = doJSON(t, env, http.MethodPut, statusPath, customerToken,
		model.UpdateStatusRequest{Status: "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, status)

	// PAID -> SHIPPED -> DELIVERED.
	status, _ = doJSON(t, env, http.MethodPut, statusPath, adminToken,
		model.UpdateStatusRequest{Status: "SHIPPED"})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, env, http.MethodPut, statusPath, adminToken,
		model.UpdateStatusRequest{Status: "DELIVERED"})
	require.Equal(t, http.StatusOK, status)

	// DELIVERED is terminal.
	status, body = doJSON(t, env, http.MethodPut, statusPath, adminToken,
		model.UpdateStatusRequest{Status: "CANCELLED"})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	// Admin order listing.
	status, body = doJSON(t, env, http.MethodGet, "/api/admin/orders?limit=10", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var page model.OrderPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(1), page.Total)

	// Analytics counts the order inside the window.
	status, body = doJSON(t, env, http.MethodGet, "/api/admin/analytics?days=7", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	var analytics model.Analytics
	require.NoError(t, json.Unmarshal(body, &analytics))
	assert.Equal(t, int64(1), analytics.OrderCount)
}

func TestProducts_PublicCatalogue(t *testing.T) {
	env := SetupEnv(t)
	kurta := SeedProduct(t, env, "Cotton Kurta", 149900, 10)
	SeedProduct(t, env, "Silk Saree", 499900, 5)

	status, body := doJSON(t, env, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)

	var products []model.Product
	require.NoError(t, json.Unmarshal(body, &products))
	assert.Len(t, products, 2)

	status, body = doJSON(t, env, http.MethodGet, "/api/products?q=kurta", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 1)
	assert.Equal(t, kurta.ID, products[0].ID)

	status, body = doJSON(t, env, http.MethodGet, "/api/products/"+kurta.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)

	var single model.Product
	require.NoError(t, json.Unmarshal(body, &single))
	assert.Equal(t, kurta.Slug, single.Slug)

	status, _ = doJSON(t, env, http.MethodGet, "/api/products/slug/"+kurta.Slug, "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, env, http.MethodGet, "/api/products/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
