package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var defaultMillisecondsDistribution = view.Distribution(
	10, 50, 100, 300, 600, 1000, 2000, 5000, 10_000, 30_000, 60_000,
	2*60_000, 5*60_000, 10*60_000, 30*60_000,
)

// Tags
var (
	FailureReason, _ = tag.NewKey("failure_reason")
	ChainID, _       = tag.NewKey("chain_id")
)

// Measures
var (
	UploadStarted    = stats.Int64("upload/started", "Upload sessions started", stats.UnitDimensionless)
	UploadCompleted  = stats.Int64("upload/completed", "Upload sessions completed", stats.UnitDimensionless)
	UploadFailed     = stats.Int64("upload/failed", "Upload sessions failed", stats.UnitDimensionless)
	UploadDurationMs = stats.Float64("upload/duration_ms", "Duration of completed upload sessions", stats.UnitMilliseconds)

	MappingSubmitted = stats.Int64("attest/mapping_submitted", "Mapping transactions submitted", stats.UnitDimensionless)
	MappingConfirmed = stats.Int64("attest/mapping_confirmed", "Mapping transactions confirmed", stats.UnitDimensionless)
	MappingFailed    = stats.Int64("attest/mapping_failed", "Mapping attempts failed", stats.UnitDimensionless)

	ChainSwitches = stats.Int64("chain/switches", "Chain switch requests issued", stats.UnitDimensionless)
)

// Views
var (
	UploadStartedView = &view.View{
		Measure:     UploadStarted,
		Aggregation: view.Count(),
	}
	UploadCompletedView = &view.View{
		Measure:     UploadCompleted,
		Aggregation: view.Count(),
	}
	UploadFailedView = &view.View{
		Measure:     UploadFailed,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{FailureReason},
	}
	UploadDurationView = &view.View{
		Measure:     UploadDurationMs,
		Aggregation: defaultMillisecondsDistribution,
	}
	MappingSubmittedView = &view.View{
		Measure:     MappingSubmitted,
		Aggregation: view.Count(),
	}
	MappingConfirmedView = &view.View{
		Measure:     MappingConfirmed,
		Aggregation: view.Count(),
	}
	MappingFailedView = &view.View{
		Measure:     MappingFailed,
		Aggregation: view.Count(),
	}
	ChainSwitchesView = &view.View{
		Measure:     ChainSwitches,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{ChainID},
	}
)

// DefaultViews are registered by the daemon at startup.
var DefaultViews = []*view.View{
	UploadStartedView,
	UploadCompletedView,
	UploadFailedView,
	UploadDurationView,
	MappingSubmittedView,
	MappingConfirmedView,
	MappingFailedView,
	ChainSwitchesView,
}

// SinceInMilliseconds is a convenience for duration measures.
func SinceInMilliseconds(startedAt time.Time) float64 {
	return float64(time.Since(startedAt).Nanoseconds()) / 1e6
}

// RecordUploadFailed records a failed session tagged with its reason.
func RecordUploadFailed(ctx context.Context, reason string) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(FailureReason, reason)},
		UploadFailed.M(1))
}
