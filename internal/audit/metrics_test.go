package audit_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"pandakernel/internal/audit"
	"pandakernel/internal/capability"
	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/kernel"
)

func collect(t *testing.T, c *audit.Collector) []prometheus.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	var out []prometheus.Metric
	for m := range ch {
		out = append(out, m)
	}
	return out
}

func TestCollectorDescribeYieldsThreeDescs(t *testing.T) {
	k := kernel.NewSimulatedKernel(ids.NewDeterministicSource(1))
	c := audit.NewCollector(k)

	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	var n int
	for range ch {
		n++
	}
	require.Equal(t, 3, n)
}

func TestCollectorReflectsGrantedCapability(t *testing.T) {
	k := kernel.NewSimulatedKernel(ids.NewDeterministicSource(2))
	c := audit.NewCollector(k)

	handle, err := k.SpawnTask(kernel.TaskDescriptor{
		Identity: identity.Metadata{Kind: identity.KindTask, Domain: identity.TrustDomainCore, Name: "owner"},
	})
	require.NoError(t, err)

	fileCap := capability.Create[capability.FileRead](k.Capabilities(), handle.Execution, capability.LabelFileRead)
	require.NoError(t, capability.Grant(k.Capabilities(), handle.Execution, fileCap))

	metrics := collect(t, c)
	require.NotEmpty(t, metrics)
}

func TestCollectorEmptyKernelYieldsNoMetrics(t *testing.T) {
	k := kernel.NewSimulatedKernel(ids.NewDeterministicSource(3))
	c := audit.NewCollector(k)

	metrics := collect(t, c)
	require.Empty(t, metrics)
}
