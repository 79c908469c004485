package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestLicenseKey(t *testing.T) {
	tests := []struct {
		desc, want string
	}{
		{"Music and Dance", "music-and-dance"},
		{"Consumption on Premises - Incidental Activity", "consumption-on-premises-incidental-activity"},
		{"Retail Food Establishment", "retail-food-establishment"},
		{"Motor Vehicle Repair : Engine Only (Class II)", "motor-vehicle-repair-:-engine-only-class-ii"},
		{"Tobacco/Cigarettes", "tobacco-cigarettes"},
		{"Children's Services Facility License", "childrens-services-facility-license"},
		{"Pawnbroker, Secondhand; Dealer", "pawnbroker-secondhand-dealer"},
		{`Back\Slash`, "back-slash"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, LicenseKey(tt.desc))
		})
	}
}

func TestKeys_Unique(t *testing.T) {
	keys := Keys(map[string]string{
		"1010": "Limited Business License",
		"1475": "Consumption on Premises - Incidental Activity",
	})
	assert.Equal(t, map[string]string{
		"1010": "limited-business-license",
		"1475": "consumption-on-premises-incidental-activity",
	}, keys)
}

func TestKeys_CollisionsAreSuffixed(t *testing.T) {
	keys := Keys(map[string]string{
		"1470": "Tavern",
		"1471": "TAVERN",
		"1006": "Retail Food",
	})
	assert.Equal(t, "tavern-1470", keys["1470"])
	assert.Equal(t, "tavern-1471", keys["1471"])
	assert.Equal(t, "retail-food", keys["1006"])
}

func TestKeys_Empty(t *testing.T) {
	assert.Empty(t, Keys(nil))
}
