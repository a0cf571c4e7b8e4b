package maps

import (
	"math"
	"testing"
)

var (
	saoPaulo     = Coordinates{Lat: -23.5505, Lng: -46.6333}
	rioDeJaneiro = Coordinates{Lat: -22.9068, Lng: -43.1729}
	brasilia     = Coordinates{Lat: -15.7939, Lng: -47.8828}
	piracicaba   = Coordinates{Lat: -22.7156, Lng: -47.6473}
	portoAlegre  = Coordinates{Lat: -30.0346, Lng: -51.2177}
	recife       = Coordinates{Lat: -8.0476, Lng: -34.8770}
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinates
		wantKm    float64
		tolerance float64
	}{
		{name: "same point", a: saoPaulo, b: saoPaulo, wantKm: 0, tolerance: 0.001},
		{name: "Sao Paulo to Piracicaba (~139km)", a: saoPaulo, b: piracicaba, wantKm: 139, tolerance: 2},
		{name: "Sao Paulo to Rio (~361km)", a: saoPaulo, b: rioDeJaneiro, wantKm: 361, tolerance: 5},
		{name: "Sao Paulo to Brasilia (~872km)", a: saoPaulo, b: brasilia, wantKm: 872, tolerance: 10},
		{name: "Porto Alegre to Recife (~2979km)", a: portoAlegre, b: recife, wantKm: 2979, tolerance: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := haversineKm(saoPaulo, recife)
	d2 := haversineKm(recife, saoPaulo)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}
