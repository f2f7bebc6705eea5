package signature

import "testing"

func TestGroupOutranks_Order(t *testing.T) {
	ascending := []string{
		GroupCosmicSignature,
		GroupCombatSite,
		GroupGasSite,
		GroupOreSite,
		GroupDataSite,
		GroupRelicSite,
		GroupWormhole,
	}
	for i := 1; i < len(ascending); i++ {
		lo, hi := ascending[i-1], ascending[i]
		if !GroupOutranks(hi, lo) {
			t.Fatalf("%s must outrank %s", hi, lo)
		}
		if GroupOutranks(lo, hi) {
			t.Fatalf("%s must not outrank %s", lo, hi)
		}
	}
	if GroupOutranks("unknown", GroupCosmicSignature) {
		t.Fatalf("unknown groups rank lowest")
	}
}
