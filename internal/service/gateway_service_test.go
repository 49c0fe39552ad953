package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embire2/DayResellers-sub000/internal/diagnostics"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/utils"
	"github.com/embire2/DayResellers-sub000/pkg/broadband"
)

type fakeCaller struct {
	configured bool
	err        error
	method     string
	path       string
	params     map[string]string
}

func (f *fakeCaller) Configured() bool { return f.configured }

func (f *fakeCaller) Call(_ context.Context, method, path string, params map[string]string) (*broadband.Response, error) {
	f.method, f.path, f.params = method, path, params
	if f.err != nil {
		return nil, f.err
	}
	return &broadband.Response{StatusCode: 200, Body: json.RawMessage(`{"status":"ok"}`), Duration: 12 * time.Millisecond}, nil
}

type memEndpoints struct {
	userProducts map[int]*models.UserProduct
	endpoints    map[int]*models.UserProductEndpoint
}

func (m *memEndpoints) GetByID(_ context.Context, id int) (*models.UserProduct, error) {
	if up, ok := m.userProducts[id]; ok {
		return up, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memEndpoints) GetEndpoint(_ context.Context, id int) (*models.UserProductEndpoint, error) {
	if ep, ok := m.endpoints[id]; ok {
		return ep, nil
	}
	return nil, sql.ErrNoRows
}

type memSettings map[int]*models.APISetting

func (m memSettings) GetByID(_ context.Context, id int) (*models.APISetting, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func newGatewayFixture(fixed, gsm *fakeCaller) (*GatewayService, *diagnostics.Buffer) {
	router := NewCredentialRouter()
	router.Register(models.MasterCategoryFixed, fixed)
	router.Register(models.MasterCategoryGSM, gsm)

	store := &memEndpoints{
		userProducts: map[int]*models.UserProduct{
			21: {ID: 21, UserID: 3, ProductID: 9, Username: "jdoe@mtnfixed", MSISDN: "27831234567", Status: models.UserProductActive},
		},
		endpoints: map[int]*models.UserProductEndpoint{
			40: {ID: 40, UserProductID: 21, APISettingID: 2,
				CustomParameters: models.Parameters{"username": "stale", "realm": "fixed"}},
		},
	}
	settings := memSettings{
		2: {ID: 2, Name: "Usage", MasterCategory: models.MasterCategoryFixed, Method: "GET", EndpointPath: "/usage"},
	}
	products := memProducts{
		9: {ID: 9, Name: "Fixed LTE", MasterCategory: models.MasterCategoryFixed, Status: models.ProductStatusActive},
	}
	buf := diagnostics.NewBuffer(10)
	return NewGatewayService(router, store, settings, products, buf), buf
}

func TestRunEndpointMergesIdentity(t *testing.T) {
	fixed := &fakeCaller{configured: true}
	gsm := &fakeCaller{configured: true}
	svc, buf := newGatewayFixture(fixed, gsm)

	res, err := svc.RunEndpoint(context.Background(), reseller, 40)
	require.NoError(t, err)

	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, models.MasterCategoryFixed, res.MasterCategory)
	assert.JSONEq(t, `{"status":"ok"}`, string(res.Data))
	assert.Equal(t, "GET", fixed.method)
	assert.Equal(t, "/usage", fixed.path)
	assert.Equal(t, map[string]string{
		"username": "jdoe@mtnfixed",
		"msisdn":   "27831234567",
		"realm":    "fixed",
	}, fixed.params)
	assert.Empty(t, gsm.path)
	assert.Zero(t, buf.Len())
}

func TestRunEndpointUpstreamFailureIsRecorded(t *testing.T) {
	fixed := &fakeCaller{configured: true, err: &broadband.APIError{StatusCode: 503, Body: "maintenance"}}
	svc, buf := newGatewayFixture(fixed, &fakeCaller{})

	_, err := svc.RunEndpoint(context.Background(), admin, 40)
	assert.ErrorIs(t, err, utils.ErrUpstream)

	require.Equal(t, 1, buf.Len())
	entry := buf.Recent(1)[0]
	assert.Equal(t, "broadband", entry.Source)
	assert.Contains(t, entry.Message, "503")
	assert.Equal(t, "40", entry.Context["endpointId"])
}

func TestRunEndpointWithoutCredentials(t *testing.T) {
	svc, buf := newGatewayFixture(&fakeCaller{configured: false}, &fakeCaller{configured: true})

	_, err := svc.RunEndpoint(context.Background(), admin, 40)
	assert.ErrorIs(t, err, utils.ErrUpstream)
	assert.Equal(t, "CREDENTIALS_MISSING", utils.CodeOf(err))
	assert.Equal(t, 1, buf.Len())
}

func TestRunEndpointHidesOtherResellersEndpoints(t *testing.T) {
	fixed := &fakeCaller{configured: true}
	svc, _ := newGatewayFixture(fixed, &fakeCaller{})

	_, err := svc.RunEndpoint(context.Background(), other, 40)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.Empty(t, fixed.path)

	_, err = svc.RunEndpoint(context.Background(), admin, 99)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
