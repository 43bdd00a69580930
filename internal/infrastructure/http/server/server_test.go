package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository/mocks"
	"storefront/internal/infrastructure/http/handlers"
	"storefront/internal/infrastructure/http/server"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type serverMocks struct {
	resolver *mocks.MockPrincipalResolver
	placer   *mocks.MockOrderPlacer
	lister   *mocks.MockProductLister
	deleter  *mocks.MockProductDeleter
}

func newTestServer(t *testing.T) (serverMocks, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := zap.NewNop()
	m := serverMocks{
		resolver: mocks.NewMockPrincipalResolver(ctrl),
		placer:   mocks.NewMockOrderPlacer(ctrl),
		lister:   mocks.NewMockProductLister(ctrl),
		deleter:  mocks.NewMockProductDeleter(ctrl),
	}

	srv := server.NewServer(server.Handlers{
		Auth: handlers.NewAuthHandler(mocks.NewMockUserRegistrar(ctrl), mocks.NewMockAuthenticator(ctrl), logger),
		Products: handlers.NewProductHandler(mocks.NewMockProductCreator(ctrl), m.deleter,
			mocks.NewMockProductGetter(ctrl), m.lister, 1<<20, logger),
		Orders: handlers.NewOrderHandler(m.placer, logger),
		Users:  handlers.NewUserHandler(mocks.NewMockUserDeleter(ctrl), logger),
		Health: handlers.NewHealthHandler(logger),
	}, m.resolver, logger)

	return m, srv.Handler()
}

func request(h http.Handler, method, path, token, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestServer_PublicRoutes(t *testing.T) {
	m, h := newTestServer(t)
	m.lister.EXPECT().Execute(gomock.Any(), 0, 0).Return([]*model.Product{}, nil)

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/health", "", ""))
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/products", "", ""))
}

func TestServer_OrdersRequireAuth(t *testing.T) {
	m, h := newTestServer(t)
	m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(&model.Principal{UserID: 2}, nil)
	m.placer.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(&model.OrderResult{Total: decimal.Zero}, nil)

	body := `{"product_ids":[1],"quantities":[1]}`
	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodPost, "/orders", "", body))
	assert.Equal(t, http.StatusOK, request(h, http.MethodPost, "/orders", "tok", body))
}

func TestServer_ProductWritesRequireSuperuser(t *testing.T) {
	m, h := newTestServer(t)
	m.resolver.EXPECT().Resolve(gomock.Any(), "user").Return(&model.Principal{UserID: 2}, nil)
	m.resolver.EXPECT().Resolve(gomock.Any(), "root").Return(&model.Principal{UserID: 1, IsSuperuser: true}, nil)
	m.deleter.EXPECT().Execute(gomock.Any(), model.Principal{UserID: 1, IsSuperuser: true}, int64(7)).Return(nil)

	assert.Equal(t, http.StatusForbidden, request(h, http.MethodDelete, "/products/7", "user", ""))
	assert.Equal(t, http.StatusOK, request(h, http.MethodDelete, "/products/7", "root", ""))
}
