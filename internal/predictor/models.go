package predictor

// Request is a single prediction query. Field names follow the public
// contract consumed by the dashboard. Everything except the attraction is
// optional: missing or unparsable values are defaulted, never rejected.
type Request struct {
	Attraction  string   `json:"atraccion" binding:"required"`
	Zone        string   `json:"zona"`
	Date        string   `json:"fecha"`
	Time        string   `json:"hora"`
	Temperature *float64 `json:"temperatura"`
	Humidity    *float64 `json:"humedad"`
	FeelsLike   *float64 `json:"sensacion_termica"`
	WeatherCode *int     `json:"codigo_clima"`
}

// Result is the full prediction output, including the audit tags that record
// which adjustment branch fired and how specific the historical evidence was.
type Result struct {
	PredictedMinutes float64 `json:"minutos_predichos"`
	BaseMinutes      float64 `json:"prediccion_base"`
	HistoricalP75    float64 `json:"p75_historico"`
	HistoricalMedian float64 `json:"median_historico"`
	Adjustment       string  `json:"ajuste_aplicado"`
	Specificity      string  `json:"especificidad_historico"`
	Hour             float64 `json:"hora"`
	HourInt          int     `json:"hora_int"`
	IsOpeningHour    bool    `json:"es_hora_apertura"`
	IsPeakHour       bool    `json:"es_hora_pico"`
	IsValleyHour     bool    `json:"es_hora_valle"`
	IsBridgeDay      bool    `json:"es_puente"`
	IsBatmanOctober  bool    `json:"es_batman_octubre"`
	Month            int     `json:"mes"`
	DayOfMonth       int     `json:"dia_mes"`
	WeekdayName      string  `json:"dia_semana"`
	IsWeekend        bool    `json:"es_fin_de_semana"`
	HistoricalCount  int     `json:"count_historico"`
}

// Specificity tags, from most to least specific. The two fallback tags are
// produced only by the suspicious-peak re-resolution in the blending engine.
const (
	SpecMonthHourDay     = "mes_hora_dia"
	SpecHourDay          = "hora_dia"
	SpecMonthHour        = "mes_hora"
	SpecHour             = "hora"
	SpecMonthDay         = "mes_dia"
	SpecDay              = "dia"
	SpecMonth            = "mes"
	SpecGlobal           = "global"
	SpecMonthDayFallback = "mes_dia_fallback"
	SpecMonthFallback    = "mes_fallback"
)

// weekdayNames maps the Monday=0 weekday index to its display name.
var weekdayNames = [7]string{
	"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
}

// hourAwareSpecificity reports whether a tag names a grouping that includes
// the hour dimension. Hour-aware references get much more historical weight.
func hourAwareSpecificity(tag string) bool {
	switch tag {
	case SpecMonthHourDay, SpecHourDay, SpecMonthHour, SpecHour:
		return true
	}
	return false
}
