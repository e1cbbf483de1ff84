package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlace_HasStreetAddress(t *testing.T) {
	tests := []struct {
		name        string
		place       Place
		expected    bool
		description string
	}{
		{
			name: "street number and route",
			place: Place{
				AddressComponents: []AddressComponent{
					{LongName: "1600", Types: []string{AddressTypeStreetNumber}},
					{LongName: "Amphitheatre Parkway", Types: []string{AddressTypeRoute}},
					{LongName: "Mountain View", Types: []string{"locality", "political"}},
				},
			},
			expected:    true,
			description: "Should return true when both street number and route are present",
		},
		{
			name: "only route without street number",
			place: Place{
				AddressComponents: []AddressComponent{
					{LongName: "Amphitheatre Parkway", Types: []string{AddressTypeRoute}},
				},
			},
			expected:    false,
			description: "Should return false when street number is missing",
		},
		{
			name: "only street number without route",
			place: Place{
				AddressComponents: []AddressComponent{
					{LongName: "1600", Types: []string{AddressTypeStreetNumber}},
				},
			},
			expected:    false,
			description: "Should return false when route is missing",
		},
		{
			name: "area level components only",
			place: Place{
				AddressComponents: []AddressComponent{
					{LongName: "Austin", Types: []string{"locality", "political"}},
					{LongName: "TX", Types: []string{"administrative_area_level_1", "political"}},
				},
			},
			expected:    false,
			description: "Should return false for city-level results",
		},
		{
			name:        "no components",
			place:       Place{},
			expected:    false,
			description: "Should return false when components are absent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.place.HasStreetAddress()
			assert.Equal(t, tt.expected, result, tt.description)
		})
	}
}

func TestPlace_Extent(t *testing.T) {
	viewport := &Bounds{South: 30.0, West: -97.8, North: 30.1, East: -97.7}
	bounds := &Bounds{South: 30.02, West: -97.78, North: 30.08, East: -97.72}

	t.Run("viewport preferred over bounds", func(t *testing.T) {
		extent, source := Place{Viewport: viewport, Bounds: bounds}.Extent()
		assert.Same(t, viewport, extent)
		assert.Equal(t, EstimateSourceViewport, source)
	})

	t.Run("bounds used when viewport missing", func(t *testing.T) {
		extent, source := Place{Bounds: bounds}.Extent()
		assert.Same(t, bounds, extent)
		assert.Equal(t, EstimateSourceBounds, source)
	})

	t.Run("fallback when nothing available", func(t *testing.T) {
		extent, source := Place{}.Extent()
		assert.Nil(t, extent)
		assert.Equal(t, EstimateSourceFallback, source)
	})
}

func TestPlace_Center(t *testing.T) {
	loc := LatLng{Lat: 30.05, Lng: -97.75}

	center, ok := Place{Location: &loc}.Center()
	assert.True(t, ok)
	assert.Equal(t, loc, center)

	center, ok = Place{Viewport: &Bounds{South: 10, West: 20, North: 12, East: 24}}.Center()
	assert.True(t, ok)
	assert.InDelta(t, 11.0, center.Lat, 1e-9)
	assert.InDelta(t, 22.0, center.Lng, 1e-9)

	_, ok = Place{}.Center()
	assert.False(t, ok)
}

func TestBounds_LngSpanAcrossAntimeridian(t *testing.T) {
	b := Bounds{South: -1, West: 179.5, North: 1, East: -179.5}
	assert.InDelta(t, 1.0, b.LngSpan(), 1e-9)
	assert.InDelta(t, 180.0, b.Center().Lng, 1e-9)
}

func TestPlace_EstimateInputsKey(t *testing.T) {
	loc := LatLng{Lat: 40, Lng: -75}
	viewport := Bounds{South: 39.9998, West: -75.00025, North: 40.0002, East: -74.99975}
	street := []AddressComponent{
		{LongName: "12", Types: []string{AddressTypeStreetNumber}},
		{LongName: "Elm Street", Types: []string{AddressTypeRoute}},
	}

	fallback := Place{Location: &loc}
	area := Place{Location: &loc, Viewport: &viewport}
	precise := Place{Location: &loc, Viewport: &viewport, AddressComponents: street}
	bounded := Place{Location: &loc, Bounds: &viewport, AddressComponents: street}

	assert.Equal(t, "fallback", fallback.EstimateInputsKey())
	assert.Equal(t, "viewport:39.999800,-75.000250,40.000200,-74.999750:area", area.EstimateInputsKey())
	assert.Equal(t, "viewport:39.999800,-75.000250,40.000200,-74.999750:street", precise.EstimateInputsKey())
	assert.Equal(t, "bounds:39.999800,-75.000250,40.000200,-74.999750:street", bounded.EstimateInputsKey())

	wider := viewport
	wider.North = 40.0004
	assert.NotEqual(t, precise.EstimateInputsKey(),
		Place{Location: &loc, Viewport: &wider, AddressComponents: street}.EstimateInputsKey())
}
