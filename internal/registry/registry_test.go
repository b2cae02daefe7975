package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/registry"
)

func TestRegisterAndLookup(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	svc := gen.NewServiceId()
	ch := gen.NewChannelId()

	r := registry.New()
	require.NoError(t, r.Register(svc, "echo", ch, registry.Descriptor{Schema: ipc.V1_0}))

	gotCh, err := r.Lookup(svc)
	require.NoError(t, err)
	require.Equal(t, ch, gotCh)

	gotSvc, gotCh2, err := r.LookupByName("echo")
	require.NoError(t, err)
	require.Equal(t, svc, gotSvc)
	require.Equal(t, ch, gotCh2)

	desc, err := r.Descriptor(svc)
	require.NoError(t, err)
	require.Equal(t, ipc.V1_0, desc.Schema)
}

func TestRegisterDuplicateServiceIDFails(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(2))
	svc := gen.NewServiceId()
	ch1 := gen.NewChannelId()
	ch2 := gen.NewChannelId()

	r := registry.New()
	require.NoError(t, r.Register(svc, "a", ch1, registry.Descriptor{}))

	err := r.Register(svc, "b", ch2, registry.Descriptor{})
	require.Error(t, err)
	var rerr *registry.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, registry.CodeAlreadyRegistered, rerr.Code)

	// failed insert must not have touched the name map (all-or-nothing).
	_, _, lookupErr := r.LookupByName("b")
	require.Error(t, lookupErr)
}

func TestRegisterDuplicateNameFails(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(3))
	svcA := gen.NewServiceId()
	svcB := gen.NewServiceId()
	chA := gen.NewChannelId()
	chB := gen.NewChannelId()

	r := registry.New()
	require.NoError(t, r.Register(svcA, "shared", chA, registry.Descriptor{}))

	err := r.Register(svcB, "shared", chB, registry.Descriptor{})
	require.Error(t, err)
	var rerr *registry.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, registry.CodeNameAlreadyRegistered, rerr.Code)

	// svcB must not have been inserted into byID either.
	_, lookupErr := r.Lookup(svcB)
	require.Error(t, lookupErr)
}

func TestUnregisterRemovesFromAllMaps(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(4))
	svc := gen.NewServiceId()
	ch := gen.NewChannelId()

	r := registry.New()
	require.NoError(t, r.Register(svc, "echo", ch, registry.Descriptor{}))
	require.NoError(t, r.Unregister(svc))

	_, err := r.Lookup(svc)
	require.Error(t, err)
	_, _, err = r.LookupByName("echo")
	require.Error(t, err)
	_, err = r.Descriptor(svc)
	require.Error(t, err)
}

func TestUnregisterUnknownServiceFails(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(5))
	svc := gen.NewServiceId()

	r := registry.New()
	err := r.Unregister(svc)
	require.Error(t, err)
	var rerr *registry.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, registry.CodeNotFound, rerr.Code)
}

func TestLookupByNameUnknownFails(t *testing.T) {
	r := registry.New()
	_, _, err := r.LookupByName("nope")
	require.Error(t, err)
	var rerr *registry.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, registry.CodeNameNotFound, rerr.Code)
}

func TestListReturnsEveryEntry(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(6))
	svcA := gen.NewServiceId()
	svcB := gen.NewServiceId()
	chA := gen.NewChannelId()
	chB := gen.NewChannelId()

	r := registry.New()
	require.NoError(t, r.Register(svcA, "a", chA, registry.Descriptor{Schema: ipc.V1_0}))
	require.NoError(t, r.Register(svcB, "b", chB, registry.Descriptor{Schema: ipc.V1_0}))

	entries := r.List()
	require.Len(t, entries, 2)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	require.True(t, names["a"])
	require.True(t, names["b"])
}
