package detector

import (
	"testing"

	"github.com/Marlvin12/perfit/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		want types.Category
	}{
		{"Wool Blend Coat", types.CategoryOuterwear},
		{"Oversized HOODIE", types.CategoryOuterwear},
		{"Floral Midi Dress", types.CategoryDress},
		{"Denim Jumpsuit", types.CategoryDress},
		{"Slim Fit Jeans", types.CategoryBottom},
		{"Pleated Skirt", types.CategoryBottom},
		{"Cotton Tee", types.CategoryTop},
		{"Ribbed Tank", types.CategoryTop},
		{"Triangle Bikini", types.CategorySwimwear},
		{"Yoga Leggings", types.CategoryBottom},
		{"Gym Bra", types.CategoryActivewear},
		{"Leather Belt", types.CategoryUnknown},
		{"", types.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(tt.name))
		})
	}
}

func TestInferCategory_FirstGroupWins(t *testing.T) {
	assert.Equal(t, types.CategoryOuterwear, InferCategory("Jacket Dress"))
	assert.Equal(t, types.CategoryDress, InferCategory("Shirt Dress"))
	// "swimsuit" is checked after the top group, which matches "tank" first
	assert.Equal(t, types.CategoryTop, InferCategory("Tankini Swimsuit"))
}
