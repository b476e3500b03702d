package models

// Trend is the predicted price direction.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// PredictionParams selects the product (by id or name) and optionally a
// single store to predict for.
type PredictionParams struct {
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	StoreName   string `json:"store_name,omitempty"`
}

// PredictionData is the model output. When the backend cannot predict it
// fills Error (and usually AvailableRecords) instead.
type PredictionData struct {
	CurrentPrice         float64 `json:"current_price"`
	PredictedPrice1Day   float64 `json:"predicted_price_1_day"`
	PredictedPrice7Days  float64 `json:"predicted_price_7_days"`
	Trend                Trend   `json:"trend"`
	Confidence           float64 `json:"confidence"`
	Explanation          string  `json:"explanation,omitempty"`
	Recommendation       string  `json:"recommendation,omitempty"`
	HistoricalDataPoints int     `json:"historical_data_points,omitempty"`

	Error            string `json:"error,omitempty"`
	AvailableRecords *int   `json:"available_records,omitempty"`
}

// Prediction is the /predict response.
type Prediction struct {
	ProductID   int64           `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	StoreName   string          `json:"store_name,omitempty"`
	Prediction  *PredictionData `json:"prediction,omitempty"`

	Error            string `json:"error,omitempty"`
	AvailableRecords *int   `json:"available_records,omitempty"`
}

// Failure reports whether the prediction is the error variant. The error
// may be nested in the prediction or sent at the top level.
func (p *Prediction) Failure() (msg string, availableRecords *int, failed bool) {
	if p.Prediction != nil && p.Prediction.Error != "" {
		return p.Prediction.Error, p.Prediction.AvailableRecords, true
	}
	if p.Error != "" {
		return p.Error, p.AvailableRecords, true
	}
	return "", nil, false
}
