package httppresentation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appOrder "github.com/minicart/orderflow/internal/application/order"
	domcustomer "github.com/minicart/orderflow/internal/domain/customer"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
)

type stubCreator struct {
	result *appOrder.CreateOrderResult
	err    error
	last   appOrder.CreateOrderInput
}

func (s *stubCreator) Execute(_ context.Context, cmd appOrder.CreateOrderInput) (*appOrder.CreateOrderResult, error) {
	s.last = cmd
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestHandler(creator *stubCreator) http.Handler {
	return NewHandler(creator, nil, nil).Router()
}

const validBody = `{"customer_id":"c1","items":[{"product_id":"p1","quantity":3}]}`

func TestHandleCreateOrder_Success(t *testing.T) {
	creator := &stubCreator{result: &appOrder.CreateOrderResult{
		OrderID:   "o-1",
		Total:     1500,
		CreatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}}
	router := newTestHandler(creator)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validBody)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	var resp createOrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "o-1", resp.OrderID)
	assert.Equal(t, int64(1500), resp.Total)

	assert.Equal(t, "c1", creator.last.CustomerID)
	require.Len(t, creator.last.Items, 1)
	assert.Equal(t, appOrder.RequestedItem{ProductID: "p1", Quantity: 3}, creator.last.Items[0])
}

func TestHandleCreateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"customer not found", domcustomer.ErrNotFound, http.StatusNotFound},
		{"products not found", domproduct.ErrNoneFound, http.StatusNotFound},
		{"insufficient stock", fmt.Errorf("%w for product: Dock", domproduct.ErrInsufficientStock), http.StatusConflict},
		{"validation", fmt.Errorf("%w: quantity must be greater than zero", appOrder.ErrValidation), http.StatusBadRequest},
		{"collaborator failure", fmt.Errorf("%w: storage down", appOrder.ErrCollaborator), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestHandler(&stubCreator{err: tc.err})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validBody)))

			assert.Equal(t, tc.want, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleCreateOrder_BadRequests(t *testing.T) {
	router := newTestHandler(&stubCreator{})

	t.Run("malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"nope":1}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	router := newTestHandler(&stubCreator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
