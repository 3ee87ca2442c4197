package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	GenerationAttemptsTotal metric.Int64Counter
	GenerationRetriesTotal  metric.Int64Counter
	RouteFallbacksTotal     metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() { // Ensure this only runs once
		meter := otel.GetMeterProvider().Meter("trib")
		var err error
		m := &AppMetrics{}

		m.GenerationAttemptsTotal, err = meter.Int64Counter(
			"itinerary_generation_attempts_total",
			metric.WithDescription("Total number of itinerary generation attempts sent to the model"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_attempts_total: %v", err)
		}

		m.GenerationRetriesTotal, err = meter.Int64Counter(
			"itinerary_generation_retries_total",
			metric.WithDescription("Total number of regeneration rounds triggered by validation or parse failures"),
			metric.WithUnit("{retry}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_retries_total: %v", err)
		}

		m.RouteFallbacksTotal, err = meter.Int64Counter(
			"route_matrix_fallbacks_total",
			metric.WithDescription("Total number of travel-time matrices served from the geometric estimate"),
			metric.WithUnit("{matrix}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_matrix_fallbacks_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance, initializing the
// instruments against the current global MeterProvider on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
