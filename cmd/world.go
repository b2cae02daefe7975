package cmd

import (
	"fmt"

	"pandakernel/internal/budget"
	"pandakernel/internal/hostconfig"
	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/kernel"
	"pandakernel/internal/pipeline"
	"pandakernel/internal/procmgr"
)

// world bundles the in-process core instances the reference CLI drives: one
// SimulatedKernel, its process manager, and an intent router, plus name
// indices so scripted steps can refer to services by name instead of raw
// identifiers. Each CLI invocation constructs its own world; there is no
// persistent daemon (spec §1 "host runtime ... demos" is out of scope as a
// shipped artifact, kept here only as a reference surface).
type world struct {
	kernel *kernel.SimulatedKernel
	procs  *procmgr.Manager
	router *pipeline.Router

	byName map[string]ids.ServiceId
	gen    *ids.Generators
}

func newWorld() *world {
	k := kernel.NewSimulatedKernel(nil)
	return &world{
		kernel: k,
		procs:  procmgr.New(k),
		router: pipeline.NewRouter(),
		byName: make(map[string]ids.ServiceId),
		gen:    ids.NewGenerators(ids.RandomSource),
	}
}

func budgetCapsFromDefaults(d hostconfig.BudgetDefaults) budget.Caps {
	return budget.Caps{
		Messages:       d.Messages,
		CPUTicks:       d.CPUTicks,
		StorageOps:     d.StorageOps,
		PipelineStages: d.PipelineStages,
	}
}

// spawnNamedService spawns a task, creates a channel for it, and registers
// it in the kernel's service registry under name, recording the mapping so
// later script steps ("terminate", "register_handler") can address it by name.
func (w *world) spawnNamedService(name string, caps budget.Caps) (ids.ServiceId, error) {
	if _, exists := w.byName[name]; exists {
		return ids.ServiceId{}, fmt.Errorf("service %q already spawned in this session", name)
	}

	svc := w.gen.NewServiceId()

	desc := procmgr.Descriptor{
		Service: svc,
		Name:    name,
		Task: kernel.TaskDescriptor{
			Identity: identity.Metadata{
				Kind:   identity.KindService,
				Domain: identity.TrustDomainUser,
				Name:   name,
			},
			Budget: caps,
		},
		Restart: procmgr.RestartPolicy{Kind: procmgr.RestartOnFailure},
	}

	handle, err := w.procs.StartService(desc)
	if err != nil {
		return ids.ServiceId{}, err
	}

	ch, err := w.kernel.CreateChannel(16)
	if err != nil {
		return ids.ServiceId{}, err
	}
	if err := w.kernel.RegisterService(svc, name, ch, ipc.V1_0); err != nil {
		return ids.ServiceId{}, err
	}
	_ = handle

	w.byName[name] = svc
	return svc, nil
}
