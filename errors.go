package merit

import "fmt"

// ConfigurationError is fatal: the batch must abort before any station is
// scheduled.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Msg }

// SnapFailure: no reach found within the snap radius. Per-station.
type SnapFailure struct {
	RadiusM float64
}

func (e *SnapFailure) Error() string {
	return fmt.Sprintf("no reach within %.0f m; increase snap_dist_m", e.RadiusM)
}

// TraversalLimitError: the traced upstream set exceeded the configured cap.
type TraversalLimitError struct {
	N, Max int
}

func (e *TraversalLimitError) Error() string {
	return fmt.Sprintf("upstream network too large: %d reaches (max %d)", e.N, e.Max)
}

// GeometryRepairError: the merge pipeline could not produce a valid polygon.
type GeometryRepairError struct {
	Stage string
	Err   error
}

func (e *GeometryRepairError) Error() string {
	return fmt.Sprintf("catchment merge failed at %s: %v", e.Stage, e.Err)
}

func (e *GeometryRepairError) Unwrap() error { return e.Err }
