package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func selfOrder() *ProductOrder {
	return &ProductOrder{
		ResellerID:      3,
		ClientID:        5,
		ProductID:       9,
		Status:          OrderStatusPending,
		ProvisionMethod: ProvisionSelf,
		SimNumber:       strPtr("8927000000000000001"),
	}
}

func courierOrder() *ProductOrder {
	return &ProductOrder{
		ResellerID:      3,
		ClientID:        5,
		ProductID:       9,
		Status:          OrderStatusPending,
		ProvisionMethod: ProvisionCourier,
		Address:         strPtr("12 Long Street, Cape Town"),
		ContactName:     strPtr("Thandi"),
		ContactPhone:    strPtr("+27821234567"),
	}
}

func TestValidateProductOrderPayloads(t *testing.T) {
	tests := []struct {
		name  string
		order func() *ProductOrder
		ok    bool
	}{
		{"self with sim", selfOrder, true},
		{"courier with contact", courierOrder, true},
		{"self without sim", func() *ProductOrder {
			o := selfOrder()
			o.SimNumber = nil
			return o
		}, false},
		{"self with blank sim", func() *ProductOrder {
			o := selfOrder()
			o.SimNumber = strPtr("   ")
			return o
		}, false},
		{"self with courier fields", func() *ProductOrder {
			o := selfOrder()
			o.Address = strPtr("12 Long Street")
			return o
		}, false},
		{"courier with sim", func() *ProductOrder {
			o := courierOrder()
			o.SimNumber = strPtr("8927")
			return o
		}, false},
		{"courier missing phone", func() *ProductOrder {
			o := courierOrder()
			o.ContactPhone = nil
			return o
		}, false},
		{"unknown method", func() *ProductOrder {
			o := selfOrder()
			o.ProvisionMethod = "drone"
			return o
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.order())
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Fields)
		})
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	o := selfOrder()
	o.ProductID = 0

	err := Validate(o)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "productId", verr.Fields[0].Field)
}

func TestValidateDecimalBounds(t *testing.T) {
	p := &Product{Name: "Fibre 50", CategoryID: 1, Status: ProductStatusActive, BasePrice: decimal.NewFromInt(-1)}
	assert.Error(t, Validate(p))

	p.BasePrice = decimal.NewFromInt(499)
	assert.NoError(t, Validate(p))
}

func TestValidateMasterCategory(t *testing.T) {
	assert.NoError(t, Validate(&ProductCategory{Name: "Fixed LTE", MasterCategory: MasterCategoryFixed}))
	assert.NoError(t, Validate(&ProductCategory{Name: "Data SIM", MasterCategory: MasterCategoryGSM}))
	assert.Error(t, Validate(&ProductCategory{Name: "Other", MasterCategory: "Vodacom"}))
}

func TestNewUserProductFromOrder(t *testing.T) {
	o := selfOrder()
	o.ID = 77

	up := NewUserProductFromOrder(o)

	assert.Equal(t, o.ResellerID, up.UserID)
	assert.Equal(t, o.ProductID, up.ProductID)
	assert.Equal(t, UserProductActive, up.Status)
	require.NotNil(t, up.SimNumber)
	assert.Equal(t, *o.SimNumber, *up.SimNumber)
	require.NotNil(t, up.Comments)
	assert.Contains(t, *up.Comments, "#77")
	assert.Empty(t, up.Username)
	assert.Empty(t, up.MSISDN)
}

func TestPriceForGroup(t *testing.T) {
	p := &Product{
		BasePrice:   decimal.NewFromInt(500),
		Group1Price: decimal.NewFromInt(450),
	}

	assert.True(t, p.PriceForGroup(ResellerGroupDefault).Equal(decimal.NewFromInt(500)))
	assert.True(t, p.PriceForGroup(ResellerGroup1).Equal(decimal.NewFromInt(450)))
	assert.True(t, p.PriceForGroup(ResellerGroup2).Equal(decimal.NewFromInt(500)))
}

func TestParametersScan(t *testing.T) {
	var p Parameters
	require.NoError(t, p.Scan([]byte(`{"username":"jdoe@mtn","realm":"fixed"}`)))
	assert.Equal(t, "fixed", p["realm"])

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	assert.Error(t, p.Scan([]byte(`["not","an","object"]`)))
	assert.Error(t, p.Scan([]byte(`{"nested":{"a":1}}`)))
	assert.Error(t, p.Scan(42))
}

func TestParametersMerge(t *testing.T) {
	base := Parameters{"realm": "fixed", "username": "old"}
	merged := base.Merge(map[string]string{"username": "new"})

	assert.Equal(t, "new", merged["username"])
	assert.Equal(t, "fixed", merged["realm"])
	assert.Equal(t, "old", base["username"])
}

func TestValidateEndpointParameters(t *testing.T) {
	ep := &UserProductEndpoint{UserProductID: 1, APISettingID: 2, CustomParameters: Parameters{"": "x"}}
	assert.Error(t, Validate(ep))

	ep.CustomParameters = Parameters{"username": "jdoe"}
	assert.NoError(t, Validate(ep))
}
