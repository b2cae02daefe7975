package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/contracts"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/storage"
)

func TestDefaultSchemaIsMajorOneMinorZero(t *testing.T) {
	require.Equal(t, ipc.SchemaVersion{Major: 1, Minor: 0}, contracts.DefaultSchema())
}

func TestSchemaForKnownAndUnknownServices(t *testing.T) {
	require.Equal(t, ipc.V1_0, contracts.SchemaFor("storage"))
	require.Equal(t, ipc.V1_0, contracts.SchemaFor("a-service-nobody-registered"))
}

func TestActionsAreStableDottedIdentifiers(t *testing.T) {
	require.Equal(t, contracts.Action("registry.register"), contracts.ActionRegistryRegister)
	require.Equal(t, contracts.Action("storage.create_object"), contracts.ActionStorageCreateObject)
	require.Equal(t, contracts.Action("process_manager.spawn"), contracts.ActionProcessManagerSpawn)
	require.Equal(t, contracts.Action("intent_router.route_intent"), contracts.ActionIntentRouterRouteIntent)
	require.Equal(t, contracts.Action("console.command.request"), contracts.ActionConsoleCommandRequest)
	require.Equal(t, contracts.Action("ui.snapshot"), contracts.ActionUISnapshot)
	require.Equal(t, contracts.Action("remote.capability.call"), contracts.ActionRemoteCapabilityCall)
}

// TestPayloadsRoundTripAsEnvelopePayloads confirms request/response payload
// types serialize cleanly through ipc.Payload, the way a real service would
// send them over a Channel.
func TestPayloadsRoundTripAsEnvelopePayloads(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(7))

	req := contracts.StorageCreateObjectRequest{
		Kind:  storage.KindBlob,
		Value: storage.Value{Kind: storage.KindBlob, Blob: []byte("payload")},
	}
	p, err := ipc.NewPayload(req)
	require.NoError(t, err)

	out, err := ipc.Deserialize[contracts.StorageCreateObjectRequest](p)
	require.NoError(t, err)
	require.Equal(t, req, out)

	resp := contracts.StorageCreateObjectResponse{
		Object:  gen.NewObjectId(),
		Version: gen.NewVersionId(),
	}
	p2, err := ipc.NewPayload(resp)
	require.NoError(t, err)
	out2, err := ipc.Deserialize[contracts.StorageCreateObjectResponse](p2)
	require.NoError(t, err)
	require.Equal(t, resp.Object.String(), out2.Object.String())
	require.Equal(t, resp.Version.String(), out2.Version.String())
}

func TestCommandErrorFormatsCodeAndMessage(t *testing.T) {
	err := contracts.CommandError{Code: contracts.CommandErrorUnauthorized, Message: "no capability for that action"}
	require.Equal(t, "Unauthorized: no capability for that action", err.Error())
}
