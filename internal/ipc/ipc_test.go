package ipc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
)

func TestP7_SchemaCompatibility(t *testing.T) {
	cases := []struct {
		a, b ipc.SchemaVersion
		want bool
	}{
		{ipc.SchemaVersion{Major: 1, Minor: 0}, ipc.SchemaVersion{Major: 1, Minor: 3}, true},
		{ipc.SchemaVersion{Major: 1, Minor: 0}, ipc.SchemaVersion{Major: 2, Minor: 0}, false},
		{ipc.SchemaVersion{Major: 0, Minor: 9}, ipc.SchemaVersion{Major: 0, Minor: 1}, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.a.IsCompatibleWith(c.b))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	type req struct {
		Name string `json:"name"`
	}
	p, err := ipc.NewPayload(req{Name: "hello"})
	require.NoError(t, err)

	out, err := ipc.Deserialize[req](p)
	require.NoError(t, err)
	require.Equal(t, "hello", out.Name)
}

func TestDeserializeFailureIsTyped(t *testing.T) {
	p, err := ipc.NewPayload("not an object")
	require.NoError(t, err)

	type target struct {
		Field int `json:"field"`
	}
	_, err = ipc.Deserialize[target](p)
	require.Error(t, err)
	var payloadErr *ipc.PayloadError
	require.ErrorAs(t, err, &payloadErr)
	require.Equal(t, ipc.CodeDecodeFailed, payloadErr.Code)
}

func TestP4_QueueNeverExceedsCapacity(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	svc := gen.NewServiceId()
	q := ipc.NewMessageQueue(2)

	mkEnv := func() ipc.Envelope {
		p, _ := ipc.NewPayload(map[string]string{})
		return ipc.NewEnvelope(gen.NewMessageId(), svc, "test.action", ipc.V1_0, p)
	}

	require.NoError(t, q.Push(mkEnv()))
	require.NoError(t, q.Push(mkEnv()))
	err := q.Push(mkEnv())
	require.Error(t, err)
	var qErr *ipc.QueueError
	require.ErrorAs(t, err, &qErr)
	require.Equal(t, ipc.QueueCodeFull, qErr.Code)
	require.Equal(t, 2, q.Len())
}

func TestP3_FIFOOrderPreserved(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(2))
	svc := gen.NewServiceId()
	q := ipc.NewMessageQueue(10)

	a, _ := ipc.NewPayload(map[string]string{"n": "a"})
	b, _ := ipc.NewPayload(map[string]string{"n": "b"})
	envA := ipc.NewEnvelope(gen.NewMessageId(), svc, "a", ipc.V1_0, a)
	envB := ipc.NewEnvelope(gen.NewMessageId(), svc, "b", ipc.V1_0, b)

	require.NoError(t, q.Push(envA))
	require.NoError(t, q.Push(envB))

	first, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, envA.ID, first.ID)

	second, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, envB.ID, second.ID)
}
