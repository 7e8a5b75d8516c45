package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	cartsvc "github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/internal/checkout"
	"github.com/storefront/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
)

type stubCheckout struct {
	key   cartsvc.SessionKey
	input checkout.CheckoutInput
	err   error
}

func (s *stubCheckout) Execute(_ context.Context, key cartsvc.SessionKey, input checkout.CheckoutInput) (json.RawMessage, error) {
	s.key = key
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"id":"ord_1"}`), nil
}

const validOrderBody = `{"customer":{"name":"Ana","email":"ana@example.com","address":"Rua A, 1"},"paymentMethod":"pix"}`

func TestOrderPlace(t *testing.T) {
	svc := &stubCheckout{}
	resp := httptest.NewRecorder()
	OrderPlace(svc, nil).ServeHTTP(resp, storefrontRequest(http.MethodPost, "/api/v1/orders", validOrderBody, nil))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.key.StoreID != 3 || svc.key.SessionID != "sess-1" {
		t.Fatalf("unexpected session key %+v", svc.key)
	}
	if svc.input.PaymentMethod != enums.PaymentMethodPix {
		t.Fatalf("unexpected payment method %s", svc.input.PaymentMethod)
	}
	created := decodeData[map[string]string](t, resp)
	if created["id"] != "ord_1" {
		t.Fatalf("unexpected response %+v", created)
	}
}

func TestOrderPlaceValidation(t *testing.T) {
	tests := map[string]string{
		"missing customer": `{"paymentMethod":"pix"}`,
		"bad email":        `{"customer":{"name":"Ana","email":"nope","address":"Rua A"},"paymentMethod":"pix"}`,
		"malformed":        `{"customer":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &stubCheckout{}
			resp := httptest.NewRecorder()
			OrderPlace(svc, nil).ServeHTTP(resp, storefrontRequest(http.MethodPost, "/api/v1/orders", body, nil))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestOrderPlaceServiceError(t *testing.T) {
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")}
	resp := httptest.NewRecorder()
	OrderPlace(svc, nil).ServeHTTP(resp, storefrontRequest(http.MethodPost, "/api/v1/orders", validOrderBody, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
