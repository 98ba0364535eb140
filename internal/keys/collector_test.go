package keys

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"usergate/pkg/domain"
)

func TestPoolCollectorReportsPartitions(t *testing.T) {
	store := &recordingStore{rec: domain.KeyRecord{Available: []string{"A", "B"}, Used: []string{"C"}}}
	p := newLoadedPool(t, store)
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewPoolCollector(p, "")))

	expected := `
# HELP usergate_keys_pool_size API keys in the pool by partition.
# TYPE usergate_keys_pool_size gauge
usergate_keys_pool_size{partition="available"} 2
usergate_keys_pool_size{partition="used"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "usergate_keys_pool_size"))
}
