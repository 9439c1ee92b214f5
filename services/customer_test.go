package services

import (
	"testing"

	"catering-menu/models"

	"github.com/stretchr/testify/assert"
)

func TestMissingCustomerFields(t *testing.T) {
	tests := []struct {
		name string
		info models.CustomerInfo
		want []string
	}{
		{"all present", models.CustomerInfo{Name: "Asha", Phone: "999", Address: "X"}, nil},
		{"missing name", models.CustomerInfo{Name: "", Phone: "999", Address: "X"}, []string{models.FieldFullName}},
		{"missing phone", models.CustomerInfo{Name: "Asha", Address: "X"}, []string{models.FieldPhone}},
		{"missing address", models.CustomerInfo{Name: "Asha", Phone: "999"}, []string{models.FieldAddress}},
		{"all missing", models.CustomerInfo{}, []string{models.FieldFullName, models.FieldPhone, models.FieldAddress}},
		{"whitespace counts as present", models.CustomerInfo{Name: " ", Phone: " ", Address: " "}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingCustomerFields(tt.info))
		})
	}
}

func TestCustomerStoreUpdateIsWholesale(t *testing.T) {
	var s CustomerStore
	assert.Len(t, s.Validate(), 3)

	s.Update("Asha", "999", "X")
	assert.Empty(t, s.Validate())

	s.Update("", "999", "X")
	assert.Equal(t, models.CustomerInfo{Phone: "999", Address: "X"}, s.Info())
	assert.Equal(t, []string{"Full Name"}, s.Validate())
}
