package entity

// Unidades de distancia admitidas.
const (
	UnitMiles      = "mi"
	UnitKilometers = "km"
)

// Point coordenada geográfica en grados.
type Point struct {
	Lat float64
	Lng float64
}

// Coordinates orden GeoJSON: [lng, lat].
func (p Point) Coordinates() []float64 {
	return []float64{p.Lng, p.Lat}
}
