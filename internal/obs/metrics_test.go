package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveAdmit(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveAdmit(0)
	m.ObserveAdmit(120 * time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Admissions))
	require.Equal(t, 1, testutil.CollectAndCount(m.AdmissionWait))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Cancellations))
}

func TestMetrics_ObserveCancel(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveCancel()

	require.Equal(t, 1.0, testutil.ToFloat64(m.Cancellations))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Admissions))
}

func TestSetupLogger_FallsBackToInfo(t *testing.T) {
	logger := SetupLogger("not-a-level")
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = SetupLogger("DEBUG")
	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
