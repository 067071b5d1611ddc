package types

import "errors"

// Kind is the machine-readable error class reported in error responses.
type Kind string

const (
	KindStoreUnavailable Kind = "StoreUnavailable"
	KindBadRequest       Kind = "BadRequest"
	KindNoDataInRange    Kind = "NoDataInRange"
	KindNotFound         Kind = "NotFound"
	KindInternal         Kind = "Internal"
)

var (
	// ErrStoreUnavailable means the dataset could not be opened or does not
	// match the expected schema. Fatal at startup.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBadRequest wraps request parameter validation failures.
	ErrBadRequest = errors.New("bad request")

	// ErrNoDataInRange is returned by aggregations over an empty selection.
	ErrNoDataInRange = errors.New("no data in range")

	// ErrNoData is returned when the dataset holds no observations at all.
	ErrNoData = errors.New("no observations")
)
