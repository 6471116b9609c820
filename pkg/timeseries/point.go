package timeseries

// Point is a sample tagged with its series name, the unit of fan-out to live
// consumers.
type Point struct {
	Series string  `json:"series"`
	Time   float64 `json:"time"`
	Value  float64 `json:"value"`
}
