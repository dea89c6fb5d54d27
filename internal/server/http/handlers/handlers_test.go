package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/server/http/dto"
	"github.com/printware/printdesk/internal/server/http/middleware"
	testhelpers "github.com/printware/printdesk/internal/test"
	"github.com/printware/printdesk/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, route, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(id int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, id)
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Envelope {
	t.Helper()
	var env dto.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, w.Body.String())
	}
	return env
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{})
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	w := performRequest(t, http.MethodPost, "/api/user/register", "/api/user/register", handler.Register, nil, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Value == "" {
		t.Fatalf("expected auth cookie, got %+v", cookies)
	}

	handler = NewAuthHandler(testhelpers.AuthFacadeStub{
		RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		},
	})
	w = performRequest(t, http.MethodPost, "/api/user/register", "/api/user/register", handler.Register, nil, body, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate login, got %d", w.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{
		AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		},
	})
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "wrong"})
	w := performRequest(t, http.MethodPost, "/api/user/login", "/api/user/login", handler.Login, nil, body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func multipartManifest(t *testing.T, content string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("manifest", "designs.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes(), writer.FormDataContentType()
}

func TestBulkUploadAccepted(t *testing.T) {
	var gotUser int64
	var gotPayload []byte
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		UploadFn: func(ctx context.Context, userID int64, payload []byte) (*model.BulkOrder, error) {
			gotUser = userID
			gotPayload = payload
			return &model.BulkOrder{ID: "b1", UserID: userID, OrderNumber: "ORD-1", Status: model.BulkOrderStatusUploaded}, nil
		},
	})

	body, contentType := multipartManifest(t, "Card A,10\n")
	w := performRequest(t, http.MethodPost, "/api/bulk-orders/upload", "/api/bulk-orders/upload", handler.Upload, asUser(7), body, map[string]string{"Content-Type": contentType})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", w.Code, w.Body.String())
	}
	if gotUser != 7 || string(gotPayload) != "Card A,10\n" {
		t.Fatalf("unexpected facade call: user=%d payload=%q", gotUser, gotPayload)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatalf("expected success envelope, got %+v", env)
	}
	var snap dto.BulkStatusResponse
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != string(model.BulkOrderStatusUploaded) || snap.OrderNumber != "ORD-1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestBulkUploadRejectsInvalidManifest(t *testing.T) {
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		UploadFn: func(context.Context, int64, []byte) (*model.BulkOrder, error) {
			return nil, domainErrors.ErrInvalidManifest
		},
	})

	body, contentType := multipartManifest(t, "garbage")
	w := performRequest(t, http.MethodPost, "/api/bulk-orders/upload", "/api/bulk-orders/upload", handler.Upload, asUser(7), body, map[string]string{"Content-Type": contentType})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Success || env.Message == "" {
		t.Fatalf("expected failure envelope with message, got %+v", env)
	}
}

func TestBulkUploadAcceptsRawBody(t *testing.T) {
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{})
	w := performRequest(t, http.MethodPost, "/api/bulk-orders/upload", "/api/bulk-orders/upload", handler.Upload, asUser(7), []byte("Card A,10\n"), map[string]string{"Content-Type": "text/plain"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for raw body upload, got %d", w.Code)
	}
}

func TestBulkStatusEndpoint(t *testing.T) {
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		StatusFn: func(ctx context.Context, id string) (*model.BulkStatus, error) {
			return &model.BulkStatus{BulkOrderID: id, Status: model.BulkOrderStatusProcessing}, nil
		},
	})
	w := performRequest(t, http.MethodGet, "/api/bulk-orders/:id/status", "/api/bulk-orders/b1/status", handler.Status, asUser(7), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	handler = NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		StatusFn: func(context.Context, string) (*model.BulkStatus, error) {
			return nil, domainErrors.ErrNotFound
		},
	})
	w = performRequest(t, http.MethodGet, "/api/bulk-orders/:id/status", "/api/bulk-orders/b1/status", handler.Status, asUser(7), nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestBulkCancelEndpoint(t *testing.T) {
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		CancelFn: func(ctx context.Context, id string) (*model.BulkStatus, error) {
			return &model.BulkStatus{BulkOrderID: id, Status: model.BulkOrderStatusOrderCreated}, nil
		},
	})
	w := performRequest(t, http.MethodPost, "/api/bulk-orders/:id/cancel", "/api/bulk-orders/b1/cancel", handler.Cancel, asUser(7), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	var snap dto.BulkStatusResponse
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != string(model.BulkOrderStatusOrderCreated) {
		t.Fatalf("terminal record must come back unchanged, got %+v", snap)
	}
}

func TestBulkListEndpoint(t *testing.T) {
	handler := NewBulkOrderHandler(testhelpers.BulkFacadeStub{
		ListFn: func(context.Context, int64) ([]model.BulkOrder, error) {
			return nil, nil
		},
	})
	w := performRequest(t, http.MethodGet, "/api/bulk-orders", "/api/bulk-orders", handler.List, asUser(7), nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty list, got %d", w.Code)
	}

	handler = NewBulkOrderHandler(testhelpers.BulkFacadeStub{})
	w = performRequest(t, http.MethodGet, "/api/bulk-orders", "/api/bulk-orders", handler.List, asUser(7), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestOrderGetOwnership(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		OrderFn: func(ctx context.Context, id int64) (*model.Order, error) {
			return &model.Order{ID: id, UserID: 1}, nil
		},
	})

	w := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/1", handler.Get, asUser(1), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", w.Code)
	}

	w = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/1", handler.Get, asUser(2), nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign order must look missing, got %d", w.Code)
	}

	w = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/abc", handler.Get, asUser(1), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestOrderTimelineGated(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		TimelineFn: func(ctx context.Context, id int64) (*usecase.TimelineView, error) {
			return &usecase.TimelineView{
				Order:          &model.Order{ID: id, UserID: 1, PaymentStatus: model.PaymentStatusPending},
				PaymentPending: true,
				AmountDue:      118.0,
			}, nil
		},
	})

	w := performRequest(t, http.MethodGet, "/api/orders/:id/timeline", "/api/orders/1/timeline", handler.Timeline, asUser(1), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	var view dto.TimelineResponse
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode timeline: %v", err)
	}
	if !view.PaymentPending || view.AmountDue != 118.0 {
		t.Fatalf("expected gated view with amount due, got %+v", view)
	}
	if len(view.Stages) != 0 {
		t.Fatalf("pending payment must withhold stages, got %+v", view.Stages)
	}
}

func TestOrderTimelineNotFound(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		TimelineFn: func(context.Context, int64) (*usecase.TimelineView, error) {
			return nil, domainErrors.ErrNotFound
		},
	})
	w := performRequest(t, http.MethodGet, "/api/orders/:id/timeline", "/api/orders/9/timeline", handler.Timeline, asUser(1), nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPaymentInitialize(t *testing.T) {
	facade := testhelpers.OpsFacadeStub{}
	handler := NewPaymentHandler(facade)

	body, _ := json.Marshal(dto.PaymentInitializeRequest{OrderID: 1})
	w := performRequest(t, http.MethodPost, "/api/payment/initialize", "/api/payment/initialize", handler.Initialize, asUser(1), body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var session dto.CheckoutSessionResponse
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Reference == "" || session.CheckoutURL == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestPaymentInitializeAlreadySettled(t *testing.T) {
	facade := testhelpers.OpsFacadeStub{
		PaymentFacadeStub: testhelpers.PaymentFacadeStub{
			InitializeFn: func(context.Context, int64) (*usecase.CheckoutSession, error) {
				return nil, domainErrors.ErrAlreadyExists
			},
		},
	}
	handler := NewPaymentHandler(facade)

	body, _ := json.Marshal(dto.PaymentInitializeRequest{OrderID: 1})
	w := performRequest(t, http.MethodPost, "/api/payment/initialize", "/api/payment/initialize", handler.Initialize, asUser(1), body, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestPaymentVerifyFailureRoutesToSupport(t *testing.T) {
	facade := testhelpers.OpsFacadeStub{
		PaymentFacadeStub: testhelpers.PaymentFacadeStub{
			VerifyFn: func(context.Context, int64, string) (*model.Order, error) {
				return nil, domainErrors.ErrPaymentNotVerified
			},
		},
	}
	handler := NewPaymentHandler(facade)

	body, _ := json.Marshal(dto.PaymentVerifyRequest{OrderID: 1, Reference: "ref"})
	w := performRequest(t, http.MethodPost, "/api/payment/verify", "/api/payment/verify", handler.Verify, asUser(1), body, nil)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Success || env.Message == "" {
		t.Fatalf("expected support-contact message, got %+v", env)
	}
}

func TestPaymentVerifySuccess(t *testing.T) {
	facade := testhelpers.OpsFacadeStub{}
	handler := NewPaymentHandler(facade)

	body, _ := json.Marshal(dto.PaymentVerifyRequest{OrderID: 1, Reference: "ref"})
	w := performRequest(t, http.MethodPost, "/api/payment/verify", "/api/payment/verify", handler.Verify, asUser(1), body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var order dto.OrderResponse
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.PaymentStatus != string(model.PaymentStatusCompleted) {
		t.Fatalf("expected settled payment status, got %+v", order)
	}
}

func TestPaymentOwnershipEnforced(t *testing.T) {
	initializeCalled := false
	facade := testhelpers.OpsFacadeStub{
		OrderFacadeStub: testhelpers.OrderFacadeStub{
			OrderFn: func(ctx context.Context, id int64) (*model.Order, error) {
				return &model.Order{ID: id, UserID: 1}, nil
			},
		},
		PaymentFacadeStub: testhelpers.PaymentFacadeStub{
			InitializeFn: func(context.Context, int64) (*usecase.CheckoutSession, error) {
				initializeCalled = true
				return nil, errors.New("must not be called")
			},
		},
	}
	handler := NewPaymentHandler(facade)

	body, _ := json.Marshal(dto.PaymentInitializeRequest{OrderID: 1})
	w := performRequest(t, http.MethodPost, "/api/payment/initialize", "/api/payment/initialize", handler.Initialize, asUser(2), body, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign order must look missing, got %d", w.Code)
	}
	if initializeCalled {
		t.Fatal("gateway must not be touched for foreign orders")
	}
}
