package access

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defano/chicago-oasis-data/internal/model"
)

type directory map[string]model.Business

func (d directory) Business(number string) model.Business {
	if b, ok := d[number]; ok {
		return b
	}
	return model.UndefinedBusiness(number)
}

func (d directory) Description(category string) string {
	if category == "1472" {
		return "Tavern"
	}
	return ""
}

// undescribed knows businesses but no category descriptions.
type undescribed struct{ directory }

func (undescribed) Description(string) string { return "" }

func TestExtractCritical_SoleNearbyBusiness(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 750, 0.4, 2015, "B")))

	dir := directory{"B": {
		Number: "B", DBAName: "Corner Tap", LegalName: "Corner Tap LLC",
		Address: "1 N State St", City: "CHICAGO", State: "IL", Zip: "60602",
		Latitude: 41.88, Longitude: -87.62,
	}}

	got, err := ExtractCritical(s, dir, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "B", got[0].Business.Number)
	assert.Equal(t, "Corner Tap", got[0].Business.DBAName)
	assert.Equal(t, 750, got[0].AtRiskPopulation)
	assert.Equal(t, "Tavern", got[0].BusinessType)
	assert.Equal(t, 2015, got[0].Year)
	assert.Equal(t, "1472", got[0].Category)
}

func TestExtractCritical_BusinessTypeFromCategory(t *testing.T) {
	s := NewStore()
	first := observation("T1", "1", 750, 0.4, 2015, "B")
	first.License.Description = ""
	require.NoError(t, s.Observe(first))
	second := observation("T2", "1", 250, 0.7, 2015, "C")
	second.License.Description = "Tavern (legacy)"
	require.NoError(t, s.Observe(second))

	got, err := ExtractCritical(s, directory{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, cb := range got {
		assert.Equal(t, "Tavern", cb.BusinessType, cb.Business.Number)
	}

	got, err = ExtractCritical(s, undescribed{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "", got[0].BusinessType)
	assert.Equal(t, "Tavern (legacy)", got[1].BusinessType)
}

func TestExtractCritical_TwoNearbyBusinessesIsNotCritical(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 750, 0.4, 2015, "A")))
	require.NoError(t, s.Observe(observation("T1", "1", 750, 0.6, 2015, "B")))

	got, err := ExtractCritical(s, directory{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractCritical_OverlappingTermsStillCritical(t *testing.T) {
	s := NewStore()
	obs := observation("T1", "1", 750, 0.4, 2015, "B")
	require.NoError(t, s.Observe(obs))
	require.NoError(t, s.Observe(obs))

	got, err := ExtractCritical(s, directory{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 750, got[0].AtRiskPopulation)
}

func TestExtractCritical_DefaultsMissingAttributes(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 10, 0.4, 2015, "B")))

	got, err := ExtractCritical(s, directory{"B": {Number: "B", DBAName: "Only Name"}}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 1)

	b := got[0].Business
	assert.Equal(t, "Only Name", b.DBAName)
	assert.Equal(t, model.Undefined, b.LegalName)
	assert.Equal(t, model.Undefined, b.Address)
	assert.Equal(t, model.Undefined, b.City)
	assert.Equal(t, model.Undefined, b.State)
	assert.Equal(t, model.Undefined, b.Zip)
	assert.Zero(t, b.Latitude)
	assert.Zero(t, b.Longitude)
}

func TestExtractCritical_SameBusinessCriticalForManyTracts(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 500, 0.4, 2015, "B")))
	require.NoError(t, s.Observe(observation("T2", "1", 300, 0.8, 2015, "B")))

	got, err := ExtractCritical(s, directory{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 800, got[0].AtRiskPopulation)
}

func TestExtractCritical_IdentityModes(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 500, 0.4, 2015, "A")))
	require.NoError(t, s.Observe(observation("T2", "1", 300, 0.8, 2015, "B")))

	// Two distinct businesses recorded at the same coordinate.
	dir := directory{
		"A": {Number: "A", Latitude: 41.9, Longitude: -87.7},
		"B": {Number: "B", Latitude: 41.9, Longitude: -87.7},
	}

	byBusiness, err := ExtractCritical(s, dir, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, byBusiness, 2)
	assert.Equal(t, "A", byBusiness[0].Business.Number)
	assert.Equal(t, "B", byBusiness[1].Business.Number)

	byCoordinate, err := ExtractCritical(s, dir, "1472", 2015, IdentityCoordinate)
	require.NoError(t, err)
	require.Len(t, byCoordinate, 1)
	assert.Equal(t, "A", byCoordinate[0].Business.Number)
}

func TestExtractCritical_OrderedByLicenseNumber(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Observe(observation("T1", "1", 1, 0.4, 2015, "300")))
	require.NoError(t, s.Observe(observation("T2", "1", 1, 0.4, 2015, "100")))
	require.NoError(t, s.Observe(observation("T3", "1", 1, 0.4, 2015, "200")))

	got, err := ExtractCritical(s, directory{}, "1472", 2015, IdentityBusiness)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "100", got[0].Business.Number)
	assert.Equal(t, "200", got[1].Business.Number)
	assert.Equal(t, "300", got[2].Business.Number)
}

func TestExtractCritical_UnknownYear(t *testing.T) {
	_, err := ExtractCritical(NewStore(), directory{}, "1472", 2015, IdentityBusiness)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownKey))
}

func TestParseIdentity(t *testing.T) {
	id, err := ParseIdentity("")
	require.NoError(t, err)
	assert.Equal(t, IdentityBusiness, id)

	id, err = ParseIdentity("coordinate")
	require.NoError(t, err)
	assert.Equal(t, IdentityCoordinate, id)

	_, err = ParseIdentity("lat-lng")
	assert.Error(t, err)
}
