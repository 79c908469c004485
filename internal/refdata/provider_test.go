package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func intPtr(v int) *int { return &v }

func sampleTables() Tables {
	return Tables{
		Licenses: []model.LicenseRecord{
			{Code: "1472", Number: "100", Description: "Tavern", TermStart: "01/01/2012", TermEnd: "12/31/2013",
				Latitude: 41.9, Longitude: -87.6, DBAName: "Corner Tap", City: "CHICAGO"},
			{Code: "1472", Number: "100", Description: "Tavern", TermStart: "01/01/2014", TermEnd: "12/31/2015",
				Latitude: 42.0, Longitude: -87.7, DBAName: "Renamed Tap", LegalName: "Tap LLC", Zip: "60614"},
			{Code: "1472", Number: "200", Description: "Tavern", TermStart: "", TermEnd: "12/31/2019"},
			{Code: "1009", Number: "300", Description: "Liquor", TermStart: "06/01/2010", TermEnd: "05/31/2011"},
			{Code: "1009", Number: "301", Description: "Packaged Liquor", TermStart: "06/01/2011", TermEnd: "05/31/2012"},
			{Code: "", Number: "999", Description: "Orphan"},
			{Code: "B2", Number: "400", Description: "Special Event"},
		},
		Tracts: []model.Tract{
			{ID: "010100", Latitude: 42.02, Longitude: -87.67, Population: intPtr(4854)},
			{ID: "010201", Latitude: 42.01, Longitude: -87.68},
			{ID: "081401", Latitude: 0, Longitude: -87.6, Population: intPtr(10)},
		},
		Neighborhoods: []model.Neighborhood{
			{ID: "10", Name: "Norwood Park"},
			{ID: "2", Name: "West Ridge"},
			{ID: "1", Name: "Rogers Park"},
		},
		TractMap: []TractMapping{
			{NeighborhoodID: "1", TractID: "010100"},
			{NeighborhoodID: "1", TractID: "010201"},
			{NeighborhoodID: "2", TractID: "020100"},
		},
		Socioeconomic: []model.Socioeconomic{{Community: "Rogers Park", HardshipIndex: 39}},
	}
}

func TestProvider_Categories(t *testing.T) {
	p := New(sampleTables())
	assert.Equal(t, []string{"1009", "1472", "B2"}, p.Categories())
	assert.Len(t, p.Licenses("1472"), 3)
	assert.Empty(t, p.Licenses("0000"))
}

func TestProvider_ReturnedSlicesAreCopies(t *testing.T) {
	p := New(sampleTables())

	lics := p.Licenses("1472")
	lics[0].Number = "tampered"
	lics = append(lics[:0], lics[1:]...)
	assert.Len(t, lics, 2)
	assert.Equal(t, "100", p.Licenses("1472")[0].Number)
	assert.Len(t, p.Licenses("1472"), 3)

	tracts := p.TractsInNeighborhood("1")
	tracts[0] = "999999"
	assert.Equal(t, []string{"010100", "010201"}, p.TractsInNeighborhood("1"))

	ids := p.NeighborhoodIDs()
	ids[0] = "77"
	assert.Equal(t, []string{"1", "2", "10"}, p.NeighborhoodIDs())

	cats := p.Categories()
	cats[0] = "0000"
	assert.Equal(t, []string{"1009", "1472", "B2"}, p.Categories())
}

func TestProvider_DescriptionLastNonEmptyWins(t *testing.T) {
	p := New(sampleTables())
	assert.Equal(t, "Tavern", p.Description("1472"))
	assert.Equal(t, "Packaged Liquor", p.Description("1009"))
	assert.Empty(t, p.Description("0000"))
}

func TestProvider_DateRange(t *testing.T) {
	p := New(sampleTables())

	start, end, ok := p.DateRange("1472")
	require.True(t, ok)
	assert.Equal(t, 2012, start)
	assert.Equal(t, 2015, end)

	start, end, ok = p.DateRange("1009")
	require.True(t, ok)
	assert.Equal(t, 2010, start)
	assert.Equal(t, 2012, end)

	_, _, ok = p.DateRange("B2")
	assert.False(t, ok)
}

func TestProvider_Neighborhoods(t *testing.T) {
	p := New(sampleTables())
	assert.Equal(t, []string{"1", "2", "10"}, p.NeighborhoodIDs())
	assert.Equal(t, "ROGERS PARK", p.NeighborhoodName("1"))
	assert.Empty(t, p.NeighborhoodName("99"))
	assert.Equal(t, []string{"010100", "010201"}, p.TractsInNeighborhood("1"))
	assert.Empty(t, p.TractsInNeighborhood("10"))
}

func TestProvider_Tracts(t *testing.T) {
	p := New(sampleTables())

	pt, ok := p.TractCentroid("010100")
	require.True(t, ok)
	assert.InDelta(t, -87.67, pt.X(), 1e-9)
	assert.InDelta(t, 42.02, pt.Y(), 1e-9)

	_, ok = p.TractCentroid("081401")
	assert.False(t, ok, "zero latitude is missing")
	_, ok = p.TractCentroid("020100")
	assert.False(t, ok, "unmapped tract")

	pop, ok := p.TractPopulation("010100")
	require.True(t, ok)
	assert.Equal(t, 4854, pop)
	_, ok = p.TractPopulation("010201")
	assert.False(t, ok)
}

func TestProvider_BusinessFirstValueWins(t *testing.T) {
	p := New(sampleTables())

	b := p.Business("100")
	assert.Equal(t, "Corner Tap", b.DBAName)
	assert.Equal(t, "Tap LLC", b.LegalName)
	assert.Equal(t, "CHICAGO", b.City)
	assert.Equal(t, "60614", b.Zip)
	assert.Equal(t, model.Undefined, b.Address)
	assert.Equal(t, model.Undefined, b.State)
	assert.InDelta(t, 41.9, b.Latitude, 1e-9)
	assert.InDelta(t, -87.6, b.Longitude, 1e-9)
}

func TestProvider_UnknownBusiness(t *testing.T) {
	p := New(sampleTables())
	assert.Equal(t, model.UndefinedBusiness("nope"), p.Business("nope"))
}

func TestProvider_Summary(t *testing.T) {
	s := New(sampleTables()).Summary()
	assert.Equal(t, 3, s.Categories)
	assert.Equal(t, 6, s.Licenses)
	assert.Equal(t, 3, s.Tracts)
	assert.Equal(t, 3, s.Neighborhoods)
}

func TestSortCodes(t *testing.T) {
	codes := []string{"1472", "B2", "99", "1009", "A1", "007"}
	sortCodes(codes)
	assert.Equal(t, []string{"007", "99", "1009", "1472", "A1", "B2"}, codes)
}

func TestCompareCodes(t *testing.T) {
	assert.Equal(t, -1, CompareCodes("99", "1009"))
	assert.Equal(t, 1, CompareCodes("1472", "1010"))
	assert.Equal(t, -1, CompareCodes("9999", "A1"))
	assert.Equal(t, 1, CompareCodes("A1", "1"))
	assert.Equal(t, 0, CompareCodes("1470", "1470"))
	assert.Equal(t, -1, CompareCodes("007", "7"))
}
