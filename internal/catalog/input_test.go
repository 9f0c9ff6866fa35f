package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsNumbersAndStrings(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":" LED ","category":"Parts","price":12.5,"stock":"40"}`), &in))

	v, err := in.Validate()
	require.NoError(t, err)
	assert.Equal(t, "LED", v.Name)
	assert.Equal(t, "12.5", v.Price.String())
	assert.Equal(t, 40, v.Stock)
}

func TestValidateRejectsNonNumericPrice(t *testing.T) {
	in := ProductInput{Name: "LED", Category: "Parts", Price: "abc", Stock: "4"}
	_, err := in.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"price"}, verr.Fields)
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	_, err := ProductInput{Price: "-1", Stock: "1.5"}.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "category", "price", "stock"}, verr.Fields)
}
