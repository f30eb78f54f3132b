package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbsr/biobank/internal/client/client"
	clientservices "github.com/cbsr/biobank/internal/client/services"
	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
	"github.com/cbsr/biobank/internal/server/services"
	"github.com/cbsr/biobank/internal/server/telemetry"
)

const (
	adminEmail    = "admin@admin.com"
	adminPassword = "testuser"
)

type testEnv struct {
	e       *echo.Echo
	metrics *telemetry.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	metrics := telemetry.NewMetrics()
	logger := logging.Discard()
	svc := Services{
		Studies:      services.NewStudyService(repos, logger, metrics),
		Participants: services.NewParticipantService(repos, logger, metrics),
		CeventTypes:  services.NewCeventTypeService(repos, logger, metrics),
		Centres:      services.NewCentreService(repos, logger, metrics),
		Shipments:    services.NewShipmentService(repos, logger, metrics),
		Users:        services.NewUserService(repos, logger, metrics),
	}
	require.NoError(t, svc.Users.SeedAdmin(context.Background(), adminEmail, adminPassword))

	e := NewServer(svc, Options{
		SecretKey:   []byte("test-secret"),
		SessionTTL:  time.Hour,
		CORSOrigins: []string{"*"},
		Metrics:     metrics,
	}, logger)
	return &testEnv{e: e, metrics: metrics}
}

type reply struct {
	code    int
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	cookies []*http.Cookie
}

// do sends a request with the session token as both cookie and XSRF header.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) reply {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: common.XSRFCookieName, Value: token})
		req.Header.Set(common.XSRFHeaderName, token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	r := reply{code: rec.Code, cookies: rec.Result().Cookies()}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	}
	return r
}

func (env *testEnv) login(t *testing.T) string {
	t.Helper()
	r := env.do(t, http.MethodPost, "/login", "", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	for _, c := range r.cookies {
		if c.Name == common.XSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("login did not set the session cookie")
	return ""
}

func decode[T any](t *testing.T, r reply) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(r.Data, &v))
	return v
}

func TestLoginAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	r := env.do(t, http.MethodGet, "/authenticate", token, nil)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, common.StatusSuccess, r.Status)
	u := decode[domain.User](t, r)
	assert.Equal(t, adminEmail, u.Email)

	r = env.do(t, http.MethodPost, "/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, r.code)
	assert.Equal(t, common.StatusError, r.Status)
}

func TestRequireSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	r := env.do(t, http.MethodGet, "/studies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.code)
	assert.Equal(t, common.StatusError, r.Status)

	r = env.do(t, http.MethodGet, "/studies", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, r.code)
	assert.Contains(t, r.Message, "invalid token")

	req := httptest.NewRequest(http.MethodPost, "/studies", strings.NewReader(`{"name":"ALS"}`))
	req.AddCookie(&http.Cookie{Name: common.XSRFCookieName, Value: token})
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r = env.do(t, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, r.code)
	r = env.do(t, http.MethodGet, "/authenticate", token, nil)
	assert.Equal(t, http.StatusUnauthorized, r.code)
}

func TestRegisterAndActivate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	body := map[string]string{"name": "Jane", "email": "jane@example.com", "password": "secret1"}
	r := env.do(t, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusOK, r.code, r.Message)
	jane := decode[domain.User](t, r)
	assert.Equal(t, domain.UserRegistered, jane.Status)

	r = env.do(t, http.MethodPost, "/users", "", body)
	assert.Equal(t, http.StatusForbidden, r.code)
	assert.Contains(t, r.Message, "already registered")

	r = env.do(t, http.MethodPost, "/login", "", map[string]string{"email": "jane@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, r.code)

	r = env.do(t, http.MethodPost, "/users/activate/"+jane.ID, token, map[string]any{"expectedVersion": 0})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	assert.Equal(t, domain.UserActive, decode[domain.User](t, r).Status)

	r = env.do(t, http.MethodPost, "/login", "", map[string]string{"email": "jane@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, r.code)
}

func TestStudyConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	r := env.do(t, http.MethodPost, "/studies", token, map[string]string{"name": "ALS"})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	st := decode[domain.Study](t, r)

	r = env.do(t, http.MethodPost, "/studies/name/"+st.ID, token, map[string]any{"expectedVersion": 0, "name": "ALS2"})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	assert.Equal(t, int64(1), decode[domain.Study](t, r).Version)

	r = env.do(t, http.MethodPost, "/studies/name/"+st.ID, token, map[string]any{"expectedVersion": 0, "name": "ALS3"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "expected version doesn't match current version: id: "+st.ID+", version: 1", r.Message)
	assert.True(t, domain.IsVersionConflict(domain.ClassifyServerError(r.code, r.Message)))

	expected := `
# HELP biobank_version_conflicts_total Changes rejected because the expected version was stale, by entity kind.
# TYPE biobank_version_conflicts_total counter
biobank_version_conflicts_total{kind="study"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(env.metrics.Registry(), strings.NewReader(expected), "biobank_version_conflicts_total"))
}

func TestChangeRequests(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	r := env.do(t, http.MethodPost, "/studies", token, map[string]string{"name": "ALS"})
	require.Equal(t, http.StatusOK, r.code)
	st := decode[domain.Study](t, r)

	tests := []struct {
		name        string
		method      string
		path        string
		body        any
		wantCode    int
		wantMessage string
	}{
		{name: "missing expectedVersion", method: http.MethodPost, path: "/studies/name/" + st.ID, body: map[string]any{"name": "X"}, wantCode: http.StatusBadRequest, wantMessage: "expectedVersion is required"},
		{name: "unknown study", method: http.MethodGet, path: "/studies/nope", wantCode: http.StatusNotFound},
		{name: "bad version in path", method: http.MethodDelete, path: "/studies/pannottype/" + st.ID + "/x/at1", wantCode: http.StatusBadRequest, wantMessage: "invalid version: x"},
		{name: "rule violation", method: http.MethodPost, path: "/studies/disable/" + st.ID, body: map[string]any{"expectedVersion": 0}, wantCode: http.StatusBadRequest, wantMessage: "already disabled"},
		{name: "bad page size", method: http.MethodGet, path: "/studies?pageSize=100", wantCode: http.StatusBadRequest, wantMessage: "pageSize exceeds maximum of 50"},
		{name: "malformed body", method: http.MethodPost, path: "/studies", body: "not an object", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.wantCode, r.code)
			assert.Equal(t, common.StatusError, r.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, r.Message)
			}
		})
	}
}

func TestStudyListEnvelope(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	for _, name := range []string{"Heart", "ALS", "Kidney"} {
		r := env.do(t, http.MethodPost, "/studies", token, map[string]string{"name": name})
		require.Equal(t, http.StatusOK, r.code)
	}

	r := env.do(t, http.MethodGet, "/studies?filter=a&sort=name&order=desc&pageSize=1", token, nil)
	require.Equal(t, http.StatusOK, r.code, r.Message)
	page := decode[domain.PagedResult[domain.Study]](t, r)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Heart", page.Items[0].Name)

	r = env.do(t, http.MethodGet, "/studies?page=4611686018427387905&pageSize=2", token, nil)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "page out of range: 4611686018427387905", r.Message)
}

func TestShipmentFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	location := func(name string) map[string]any {
		return map[string]any{
			"expectedVersion": 0, "name": name, "street": "1 Main St", "city": "Edmonton",
			"province": "AB", "postalCode": "T6G", "countryIsoCode": "CA",
		}
	}
	centreWithLocation := func(name string) *domain.Centre {
		r := env.do(t, http.MethodPost, "/centres", token, map[string]string{"name": name})
		require.Equal(t, http.StatusOK, r.code, r.Message)
		c := decode[domain.Centre](t, r)
		r = env.do(t, http.MethodPost, "/centres/locations/"+c.ID, token, location("Lab"))
		require.Equal(t, http.StatusOK, r.code, r.Message)
		c = decode[domain.Centre](t, r)
		return &c
	}
	from, to := centreWithLocation("CBSR"), centreWithLocation("Calgary")

	r := env.do(t, http.MethodPost, "/centres/locations", token, map[string]any{"filter": "lab", "limit": 5})
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, decode[[]domain.CentreLocationInfo](t, r), 2)

	r = env.do(t, http.MethodPost, "/shipments", token, map[string]string{
		"courierName": "FedEx", "trackingNumber": "TN1",
		"fromLocationId": from.Locations[0].UniqueID, "toLocationId": to.Locations[0].UniqueID,
	})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	sh := decode[domain.Shipment](t, r)

	r = env.do(t, http.MethodPost, "/shipments/state/"+sh.ID, token, map[string]any{
		"expectedVersion": 0, "newState": "packed", "datetime": "2024-02-01T09:00:00Z",
	})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	sh = decode[domain.Shipment](t, r)
	assert.Equal(t, domain.ShipmentPacked, sh.State)
	require.NotNil(t, sh.TimePacked)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), sh.TimePacked.UTC())

	r = env.do(t, http.MethodGet, "/shipments/list/"+to.ID+"?status=packed", token, nil)
	require.Equal(t, http.StatusOK, r.code, r.Message)
	assert.Equal(t, 1, decode[domain.PagedResult[domain.Shipment]](t, r).Total)

	r = env.do(t, http.MethodDelete, "/shipments/"+sh.ID+"/1", token, nil)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "shipment not in created state", r.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.do(t, http.MethodGet, "/studies/nope", token, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `biobank_http_requests_total{code="404",method="GET",route="/studies/:id"} 1`)
	assert.Contains(t, rec.Body.String(), `biobank_http_requests_total{code="200",method="POST",route="/login"} 1`)
}

// TestClientRoundTrip drives the server through the client domain layer.
func TestClientRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.e)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	api, err := client.NewRESTClient(srv.URL, 5*time.Second, logging.Discard())
	require.NoError(t, err)
	_, err = api.Post(ctx, "/login", map[string]string{"email": adminEmail, "password": adminPassword})
	require.NoError(t, err)
	require.NotEmpty(t, api.SessionToken())

	studies := clientservices.NewStudyService(api)
	st, err := studies.Add(ctx, "ALS", "")
	require.NoError(t, err)
	assert.True(t, st.IsDisabled())

	renamed, err := studies.UpdateName(ctx, st, "ALS2")
	require.NoError(t, err)
	assert.Equal(t, st.Version+1, renamed.Version)
	assert.Equal(t, "ALS2", renamed.Name)

	_, err = studies.UpdateName(ctx, st, "ALS3")
	require.Error(t, err)
	assert.Equal(t, domain.KindVersionConflict, domain.KindOf(err))

	list, err := studies.List(ctx, domain.ListOptions{Filter: "als"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ALS2", list.Items[0].Name)
}
