package lloyd

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lloyd/history"
	"github.com/hupe1980/lloyd/internal/kmeans"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInsufficientData is returned when a run is started without points.
	ErrInsufficientData = errors.New("no data points")

	// ErrInsufficientPointsSentinel matches any *ErrInsufficientPoints via errors.Is.
	ErrInsufficientPointsSentinel = errors.New("fewer points than clusters")

	// ErrSessionRunning is returned by operations that must not run mid-clustering.
	ErrSessionRunning = errors.New("session is running")

	// ErrPhaseOrder is returned when AssignStep and UpdateStep are not alternated.
	ErrPhaseOrder = errors.New("assign and update steps must alternate")

	// ErrNotFound is returned when no history exists for an iteration.
	ErrNotFound = history.ErrNotFound

	// ErrUnknownInitMethod is returned for an unrecognized initialization name.
	ErrUnknownInitMethod = kmeans.ErrUnknownInitMethod
)

// ErrInsufficientPoints indicates that k exceeds the number of points.
//
// errors.Is(err, ErrInsufficientPointsSentinel) reports true for it.
type ErrInsufficientPoints struct {
	Points int
	K      int
	cause  error
}

func (e *ErrInsufficientPoints) Error() string {
	return fmt.Sprintf("insufficient points: %d points for k=%d", e.Points, e.K)
}

func (e *ErrInsufficientPoints) Is(target error) bool {
	return target == ErrInsufficientPointsSentinel
}

func (e *ErrInsufficientPoints) Unwrap() error { return e.cause }

func translateError(err error, points, k int) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kmeans.ErrTooFewPoints) {
		return &ErrInsufficientPoints{Points: points, K: k, cause: err}
	}

	return err
}
