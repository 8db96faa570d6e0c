package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/money"
	"github.com/nexstore/storefront/internal/mutation"
	"github.com/nexstore/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCartService() (*CartService, *fakeAPI, *mockCache) {
	api := newFakeAPI()
	c := newMockCache()
	return NewCartService(api, api, c, mutation.NewTracker(), zap.NewNop()), api, c
}

func mugLine(qty int) domain.CartItem {
	return domain.CartItem{ProductID: "p2", Name: "Tea", Quantity: qty, Price: money.NewAmount("4.50"), Stock: 100}
}

func TestAddItem_CreatesCartLazily(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(0, "")

	res := svc.AddItem(context.Background(), sess, "p1", 2)

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, []string{"CreateCart", "AddItem"}, api.calls)
	assert.True(t, sess.HasCart())
	assert.Equal(t, res.Data.ID, sess.CartID)
	assert.Equal(t, "20.00", res.Data.Summary.GrandTotal.Fixed())
	assert.Equal(t, 2, res.Data.Summary.TotalItemsCount)

	cookies := sess.Pending()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CartCookie, cookies[0].Name)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)
}

func TestAddItem_ExistingCartNoCreate(t *testing.T) {
	svc, api, _ := newTestCartService()
	cartID := api.seedCart()
	sess := session.New(cartID, "")

	res := svc.AddItem(context.Background(), sess, "p1", 1)

	require.True(t, res.OK())
	assert.Equal(t, []string{"AddItem"}, api.calls)
	assert.Empty(t, sess.Pending())
}

func TestAddItem_InsufficientStock(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(api.seedCart(), "")

	res := svc.AddItem(context.Background(), sess, "p1", 50)

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, "Insufficient stock", res.Message)
	assert.Nil(t, res.Data)
}

func TestAddItem_InvalidQuantityMakesNoCall(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(0, "")

	res := svc.AddItem(context.Background(), sess, "p1", 0)

	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, "Quantity must be at least 1", res.FieldErrors["quantity"])
	assert.Zero(t, api.callCount())
	assert.False(t, sess.HasCart())
}

func TestAddItem_TransportFailure(t *testing.T) {
	svc, api, _ := newTestCartService()
	api.errs["AddItem"] = &apiclient.Error{Kind: apiclient.KindTransport, Message: apiclient.GenericMessage}
	sess := session.New(api.seedCart(), "")

	res := svc.AddItem(context.Background(), sess, "p1", 1)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "Something went wrong", res.Message)
}

func TestAddThenRemove_RestoresCart(t *testing.T) {
	svc, api, _ := newTestCartService()
	ctx := context.Background()
	sess := session.New(api.seedCart(mugLine(3)), "")

	before := svc.GetCart(ctx, sess)
	require.True(t, before.OK())

	require.True(t, svc.AddItem(ctx, sess, "p1", 2).OK())
	after := svc.RemoveItem(ctx, sess, "p1")
	require.True(t, after.OK())

	assert.Equal(t, before.Data.Items, after.Data.Items)
	assert.True(t, before.Data.Summary.GrandTotal.Equal(after.Data.Summary.GrandTotal.Decimal))
	assert.True(t, before.Data.Summary.Subtotal.Equal(after.Data.Summary.Subtotal.Decimal))
	assert.Equal(t, before.Data.Summary.TotalItemsCount, after.Data.Summary.TotalItemsCount)
}

func TestUpdateToZero_EqualsRemove(t *testing.T) {
	ctx := context.Background()

	svcA, apiA, _ := newTestCartService()
	sessA := session.New(apiA.seedCart(mugLine(1)), "")
	require.True(t, svcA.AddItem(ctx, sessA, "p1", 2).OK())
	updated := svcA.UpdateQuantity(ctx, sessA, "p1", 0)

	svcB, apiB, _ := newTestCartService()
	sessB := session.New(apiB.seedCart(mugLine(1)), "")
	require.True(t, svcB.AddItem(ctx, sessB, "p1", 2).OK())
	removed := svcB.RemoveItem(ctx, sessB, "p1")

	require.True(t, updated.OK())
	require.True(t, removed.OK())
	assert.Equal(t, removed.Data.Items, updated.Data.Items)
	assert.Equal(t, removed.Data.Summary.GrandTotal.Fixed(), updated.Data.Summary.GrandTotal.Fixed())
	assert.Contains(t, apiA.calls, "RemoveItem")
	assert.NotContains(t, apiA.calls, "UpdateItem")
}

func TestUpdateQuantity(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(api.seedCart(mugLine(1)), "")

	res := svc.UpdateQuantity(context.Background(), sess, "p2", 4)

	require.True(t, res.OK())
	assert.Equal(t, "18.00", res.Data.Summary.GrandTotal.Fixed())
}

func TestUpdateQuantity_NoCart(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.UpdateQuantity(context.Background(), session.New(0, ""), "p2", 4)

	require.True(t, res.OK())
	assert.Empty(t, res.Data.Items)
	assert.Zero(t, api.callCount())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(api.seedCart(mugLine(1)), "")

	res := svc.RemoveItem(context.Background(), sess, "missing")

	require.True(t, res.OK(), res.Message)
	require.Len(t, res.Data.Items, 1)
	assert.Equal(t, []string{"RemoveItem", "GetCart"}, api.calls)
}

func TestRemoveItem_NoCart(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.RemoveItem(context.Background(), session.New(0, ""), "p1")

	require.True(t, res.OK())
	assert.NotNil(t, res.Data.Items)
	assert.Zero(t, api.callCount())
}

func TestRemoveItem_UnknownCartDropsCookie(t *testing.T) {
	svc, api, c := newTestCartService()
	sess := session.New(999, "")

	res := svc.RemoveItem(context.Background(), sess, "p1")

	require.True(t, res.OK(), res.Message)
	assert.Empty(t, res.Data.Items)
	assert.Equal(t, []string{"RemoveItem", "GetCart"}, api.calls)
	assert.False(t, sess.HasCart())
	require.Len(t, sess.Pending(), 1)
	assert.Equal(t, -1, sess.Pending()[0].MaxAge)
	assert.Equal(t, 1, c.deletes)
}

func TestAddItem_UnknownCartStartsNewCart(t *testing.T) {
	svc, api, _ := newTestCartService()
	ctx := context.Background()
	sess := session.New(999, "")

	res := svc.AddItem(ctx, sess, "p1", 1)

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, []string{"AddItem", "GetCart", "CreateCart", "AddItem"}, api.calls)
	assert.NotEqual(t, int64(999), sess.CartID)
	assert.Equal(t, res.Data.ID, sess.CartID)
	assert.Equal(t, 1, res.Data.Summary.TotalItemsCount)

	cookies := sess.Pending()
	require.Len(t, cookies, 1)
	assert.Equal(t, itoa(sess.CartID), cookies[0].Value)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)

	again := svc.AddItem(ctx, sess, "p1", 1)
	require.True(t, again.OK(), again.Message)
	assert.Equal(t, 2, again.Data.Summary.TotalItemsCount)
	assert.Equal(t, []string{"AddItem", "GetCart", "CreateCart", "AddItem", "AddItem"}, api.calls)
}

func TestAddItem_UnknownProductKeepsCart(t *testing.T) {
	svc, api, _ := newTestCartService()
	cartID := api.seedCart()
	sess := session.New(cartID, "")

	res := svc.AddItem(context.Background(), sess, "ghost", 1)

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, "Product not found", res.Message)
	assert.Equal(t, cartID, sess.CartID)
	assert.Empty(t, sess.Pending())
	assert.NotContains(t, api.calls, "CreateCart")
}

func TestUpdateQuantity_UnknownCart(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(999, "")

	res := svc.UpdateQuantity(context.Background(), sess, "p2", 4)

	require.True(t, res.OK(), res.Message)
	assert.Empty(t, res.Data.Items)
	assert.Equal(t, []string{"UpdateItem", "GetCart"}, api.calls)
	assert.False(t, sess.HasCart())
}

func TestUpdateQuantity_ItemNotInCart(t *testing.T) {
	svc, api, _ := newTestCartService()
	cartID := api.seedCart(mugLine(1))
	sess := session.New(cartID, "")

	res := svc.UpdateQuantity(context.Background(), sess, "p1", 2)

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, cartID, sess.CartID)
}

func TestGetCart_NoCart(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.GetCart(context.Background(), session.New(0, ""))

	require.True(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Zero(t, api.callCount())
}

func TestGetCart_UsesCache(t *testing.T) {
	svc, api, c := newTestCartService()
	ctx := context.Background()
	sess := session.New(api.seedCart(mugLine(2)), "")

	first := svc.GetCart(ctx, sess)
	second := svc.GetCart(ctx, sess)

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, api.callCount())
	assert.True(t, c.has(sess.CartID))
}

func TestMutationInvalidatesCache(t *testing.T) {
	svc, api, c := newTestCartService()
	ctx := context.Background()
	sess := session.New(api.seedCart(mugLine(2)), "")

	require.True(t, svc.GetCart(ctx, sess).OK())
	require.True(t, c.has(sess.CartID))

	require.True(t, svc.AddItem(ctx, sess, "p1", 1).OK())
	assert.False(t, c.has(sess.CartID))

	res := svc.GetCart(ctx, sess)
	require.True(t, res.OK())
	assert.Equal(t, 3, res.Data.Summary.TotalItemsCount)
}

func TestFailedMutationKeepsCache(t *testing.T) {
	svc, api, c := newTestCartService()
	ctx := context.Background()
	sess := session.New(api.seedCart(mugLine(2)), "")

	require.True(t, svc.GetCart(ctx, sess).OK())
	res := svc.AddItem(ctx, sess, "unknown", 1)

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, "Product not found", res.Message)
	assert.True(t, c.has(sess.CartID))
	assert.Zero(t, c.deletes)
}

func TestGetCart_CacheErrorFallsBack(t *testing.T) {
	svc, api, c := newTestCartService()
	c.err = errors.New("redis down")
	sess := session.New(api.seedCart(mugLine(2)), "")

	res := svc.GetCart(context.Background(), sess)

	require.True(t, res.OK())
	assert.Equal(t, 2, res.Data.Summary.TotalItemsCount)
}

func TestGetCart_UnknownCartDropsCookie(t *testing.T) {
	svc, _, _ := newTestCartService()
	sess := session.New(999, "")

	res := svc.GetCart(context.Background(), sess)

	require.True(t, res.OK())
	assert.Nil(t, res.Data)
	assert.False(t, sess.HasCart())
	require.Len(t, sess.Pending(), 1)
	assert.Equal(t, -1, sess.Pending()[0].MaxAge)
}

func TestPlaceOrder_ShortAddressMakesNoCall(t *testing.T) {
	svc, api, _ := newTestCartService()
	sess := session.New(api.seedCart(mugLine(1)), "tok")

	res := svc.PlaceOrder(context.Background(), sess, "abc")

	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, map[string]string{"shipping_address": "Address is too short"}, res.FieldErrors)
	assert.Zero(t, api.callCount())
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, api, c := newTestCartService()
	ctx := context.Background()
	sess := session.New(api.seedCart(mugLine(2)), "tok")
	cartID := sess.CartID
	require.True(t, svc.GetCart(ctx, sess).OK())

	res := svc.PlaceOrder(ctx, sess, "  1 Main Street  ")

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "1 Main Street", res.Data.ShippingAddress)
	assert.Equal(t, "/store/orders/501", res.Redirect)
	assert.Equal(t, "9.00", res.Data.TotalPrice.Fixed())
	assert.False(t, sess.HasCart())
	assert.False(t, c.has(cartID))

	cookies := sess.Pending()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CartCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPlaceOrder_Unauthorized(t *testing.T) {
	svc, api, _ := newTestCartService()
	api.errs["CreateOrder"] = &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: http.StatusForbidden, Message: "Forbidden"}
	sess := session.New(api.seedCart(mugLine(1)), "")
	cartID := sess.CartID

	res := svc.PlaceOrder(context.Background(), sess, "1 Main Street")

	assert.Equal(t, OutcomeUnauthorized, res.Outcome)
	assert.Equal(t, "/login", res.Redirect)
	assert.Equal(t, cartID, sess.CartID)
	assert.Empty(t, sess.Pending())
}

func TestPlaceOrder_BackendValidation(t *testing.T) {
	svc, api, _ := newTestCartService()
	api.errs["CreateOrder"] = &apiclient.Error{
		Kind:    apiclient.KindValidation,
		Status:  http.StatusUnprocessableEntity,
		Message: "Invalid fields",
		Fields:  map[string]string{"shipping_address": "String should have at most 200 characters"},
	}
	sess := session.New(api.seedCart(mugLine(1)), "tok")

	res := svc.PlaceOrder(context.Background(), sess, "1 Main Street")

	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, "String should have at most 200 characters", res.FieldErrors["shipping_address"])
	assert.True(t, sess.HasCart())
}

func TestPlaceOrder_EmptySession(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.PlaceOrder(context.Background(), session.New(0, "tok"), "1 Main Street")

	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, MessageEmptyCart, res.Message)
	assert.Zero(t, api.callCount())
}

func TestPlaceOrder_DuplicateSubmission(t *testing.T) {
	svc, api, _ := newTestCartService()
	api.gate = make(chan struct{})
	cartID := api.seedCart(mugLine(1))
	ctx := context.Background()

	first := make(chan Result[*domain.Order], 1)
	go func() {
		first <- svc.PlaceOrder(ctx, session.New(cartID, "tok"), "1 Main Street")
	}()

	require.Eventually(t, func() bool {
		return svc.tracker.State("cart:"+itoa(cartID), mutation.ActionCheckout) == mutation.StateInFlight
	}, time.Second, 5*time.Millisecond)

	second := svc.PlaceOrder(ctx, session.New(cartID, "tok"), "1 Main Street")
	assert.Equal(t, OutcomeBusy, second.Outcome)

	close(api.gate)
	res := <-first
	require.True(t, res.OK())
	assert.Equal(t, mutation.StateIdle, svc.tracker.State("cart:"+itoa(cartID), mutation.ActionCheckout))
}

func TestPreviewOrder(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.PreviewOrder(context.Background(), []domain.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "ghost", Quantity: 1},
	})

	require.True(t, res.OK())
	assert.Equal(t, "20.00", res.Data.Subtotal())
	assert.Equal(t, "$20.00", res.Data.Text)
	assert.Equal(t, []string{"ghost"}, res.Data.Unresolved)
	assert.Equal(t, []string{"ListProducts"}, api.calls)
}

func TestPreviewOrder_SnapshotsSkipCatalog(t *testing.T) {
	svc, api, _ := newTestCartService()

	res := svc.PreviewOrder(context.Background(), []domain.LineItem{
		{ProductID: "x", Quantity: 3, Product: &domain.Product{ID: "x", Price: money.NewAmount("0.10")}},
	})

	require.True(t, res.OK())
	assert.Equal(t, "0.30", res.Data.Subtotal())
	assert.Zero(t, api.callCount())
}

func TestPreviewOrder_CatalogFailure(t *testing.T) {
	svc, api, _ := newTestCartService()
	api.errs["ListProducts"] = errors.New("dial tcp: refused")

	res := svc.PreviewOrder(context.Background(), []domain.LineItem{{ProductID: "p1", Quantity: 1}})

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, apiclient.GenericMessage, res.Message)
}

func TestPreviewOrder_InvalidDraftMakesNoCall(t *testing.T) {
	svc, api, _ := newTestCartService()
	ctx := context.Background()

	res := svc.PreviewOrder(ctx, []domain.LineItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 0},
		{ProductID: "", Quantity: 1},
	})

	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, map[string]string{
		"items.1.quantity":   "Quantity must be at least 1",
		"items.2.product_id": "Product is required",
	}, res.FieldErrors)

	empty := svc.PreviewOrder(ctx, nil)
	assert.Equal(t, OutcomeInvalid, empty.Outcome)
	assert.Equal(t, "At least one item is required", empty.FieldErrors["items"])
	assert.Zero(t, api.callCount())
}
