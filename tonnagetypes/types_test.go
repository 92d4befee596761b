package tonnagetypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	assert.Equal(t, []Variant{VariantXLS, VariantCSV}, Variants())
}

func TestDestinationKey(t *testing.T) {
	tests := []struct {
		dataset string
		variant Variant
		want    string
	}{
		{dataset: "TRUCKD11", variant: VariantCSV, want: "TRUCKD11/dataset/TRUCKD11.csv"},
		{dataset: "TRUCKD11", variant: VariantXLS, want: "TRUCKD11/dataset/TRUCKD11.xls"},
		{dataset: "truck-tonnage", variant: VariantCSV, want: "truck-tonnage/dataset/truck-tonnage.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DestinationKey(tt.dataset, tt.variant))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "TRUCKD11.xls", Filename("TRUCKD11", VariantXLS))
}

func TestAssetSourceJSON(t *testing.T) {
	data, err := json.Marshal(AssetSource{Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Bucket":"b","Key":"k"}`, string(data))
}
