package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/service"
)

const routeSecret = "route-secret"

// newAPI mounts every route over services without repositories; the
// requests below must be settled before any of them is reached.
func newAPI() *gin.Engine {
	options := service.NewOptionService(nil, nil, nil, 0)
	h := &Handlers{
		Taxonomies: make(map[model.Taxonomy]*TaxonomyHandler),
		Options:    make(map[model.Kind]*OptionHandler),
		Categories: NewCategoryHandler(service.NewCategoryService(nil, nil), options),
		Cart:       NewCartHandler(service.NewCartService(nil, nil)),
		Orders:     NewOrderHandler(service.NewOrderService(nil, nil, nil, nil, nil)),
	}
	for _, kind := range model.Kinds() {
		h.Options[kind] = NewOptionHandler(options, kind)
	}
	r := gin.New()
	h.Register(r.Group("/api/v1"), routeSecret)
	return r
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	claims := service.TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routeSecret))
	require.NoError(t, err)
	return token
}

func call(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Fields []model.FieldError `json:"fields"`
}

func fields(t *testing.T, w *httptest.ResponseRecorder) []model.FieldError {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Fields
}

func TestRoutes_GuestOrderNeedsContact(t *testing.T) {
	w := call(newAPI(), http.MethodPost, "/api/v1/orders", "",
		`{"items":[{"kind":"TV_MOUNTING","option_id":1,"quantity":1}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	got := fields(t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "guest", got[0].Field)
}

func TestRoutes_UnknownKindRejected(t *testing.T) {
	w := call(newAPI(), http.MethodPost, "/api/v1/orders", "",
		`{"items":[{"kind":"plumbing","option_id":1,"quantity":1}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "kind", fields(t, w)[0].Field)
}

func TestRoutes_QuantityAboveLimitIsBadRequest(t *testing.T) {
	w := call(newAPI(), http.MethodPost, "/api/v1/orders", "",
		`{"items":[{"kind":"gazebo_service","option_id":1,"quantity":3000000000}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	got := fields(t, w)
	require.NotEmpty(t, got)
	assert.Equal(t, "max", got[0].Rule)
}

func TestRoutes_CatalogWritesNeedAdmin(t *testing.T) {
	r := newAPI()
	customer := tokenFor(t, model.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/tv-mounting-options", "", `{}`).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/tv-mounting-options", customer, `{}`).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodDelete, "/api/v1/categories/1", customer, "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", customer, `{"status":"paid"}`).Code)
}

func TestRoutes_CartNeedsToken(t *testing.T) {
	r := newAPI()

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/cart", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/cart/items", "", `{}`).Code)
}

func TestParseRef_AnyCase(t *testing.T) {
	ref, err := parseRef("TV_MOUNTING", 4)
	require.NoError(t, err)
	assert.Equal(t, model.Ref{Kind: model.KindTVMounting, ID: 4}, ref)

	_, err = parseRef("tv-mounting", 4)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Fields[0].Field)
}

func tvOption() *model.TVMountingOption {
	return &model.TVMountingOption{
		BaseOption: model.BaseOption{
			ID: 2, Title: "65in wall mount", Quantity: 1, NeedsMovingHelp: model.No,
			Price: decimal.NewNullDecimal(decimal.NewFromInt(100)),
		},
		Needs:        model.TVNeedsMounting,
		Bracket:      model.BracketFlat,
		BracketPrice: decimal.NewNullDecimal(decimal.NewFromInt(20)),
		WallType:     model.WallConcrete,
	}
}

func TestCartLine_CarriesVariantFields(t *testing.T) {
	tv := tvOption()
	cart := &model.Cart{Items: []model.CartItem{
		{Ref: model.RefOf(tv), Quantity: 1},
		{Ref: model.Ref{Kind: model.KindGazebo, ID: 8}, Quantity: 1},
	}}
	options := map[model.Ref]model.ServiceOption{model.RefOf(tv): tv}
	resp := toCartResponse(&service.CartView{Cart: cart, Options: options, Total: cart.TotalPrice(options)})

	live, err := json.Marshal(resp.Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(live), `"bracket":"FLAT"`)
	assert.Contains(t, string(live), `"wall_type":"CONCRETE"`)

	gone, err := json.Marshal(resp.Items[1])
	require.NoError(t, err)
	assert.NotContains(t, string(gone), `"option"`)
}

func TestOrderLine_CarriesLiveVariant(t *testing.T) {
	tv := tvOption()
	order := &model.Order{
		UserID: new(uuid.UUID),
		Status: model.OrderStatusPaid,
		Items: []model.OrderItem{
			{Ref: model.RefOf(tv), Title: "65in wall mount", Quantity: 1,
				UnitPrice: decimal.NewFromInt(120), Price: decimal.NewFromInt(120)},
			{Ref: model.Ref{Kind: model.KindGazebo, ID: 8}, Title: "Pergola", Quantity: 1,
				UnitPrice: decimal.NewFromInt(300), Price: decimal.NewFromInt(300)},
		},
	}
	// The live option was repriced; the order keeps its frozen price.
	tv.Price = decimal.NewNullDecimal(decimal.NewFromInt(400))

	resp := toOrderResponse(order, map[model.Ref]model.ServiceOption{model.RefOf(tv): tv})

	body, err := json.Marshal(resp.Items)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"bracket":"FLAT"`)
	assert.Equal(t, "120", resp.Items[0].Price.String())
	assert.Nil(t, resp.Items[1].Option)
}
