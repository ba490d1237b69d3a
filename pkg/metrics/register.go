package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Reuse registers c on reg. When an equal collector is already registered
// it returns that one instead, so components built twice against the same
// registry share their series.
func Reuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
