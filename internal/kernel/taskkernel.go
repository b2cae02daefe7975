package kernel

import (
	"errors"

	"pandakernel/internal/budget"
	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/storage"
	"pandakernel/internal/vtime"
)

// TaskKernel is a budget-metering view of a SimulatedKernel scoped to one
// spawned task's execution (spec §4.8): it threads the task's budget.Context
// through every operation the spec names as resource-consuming — send,
// receive, sleep, and storage commit — and reports the execution's exit as
// Cancelled("budget_exhausted") the moment any of them observes
// BudgetExhausted, so the process manager's HandleExits sees it (spec
// "Exhaustion cascades to cancellation"). V0/Kernel themselves stay
// unmetered and frozen; ForTask is the only way to get a metered view.
type TaskKernel struct {
	k      *SimulatedKernel
	task   ids.TaskId
	budget *budget.Context
}

// ForTask returns a TaskKernel scoped to handle, metering against the
// budget recorded for it at SpawnTask time. The returned view is safe to
// use even if handle's budget had no caps set (every consume then succeeds
// silently, per budget.Context.TryConsume).
func (k *SimulatedKernel) ForTask(handle TaskHandle) *TaskKernel {
	return &TaskKernel{k: k, task: handle.Task, budget: k.Budget(handle.Task)}
}

// cancelOnExhaustion reports tk's task as cancelled if err is a
// *budget.ExhaustedError, then returns err unchanged so callers can write
// `return tk.cancelOnExhaustion(tk.budget.TryConsume(...))`.
func (tk *TaskKernel) cancelOnExhaustion(err error) error {
	var exhausted *budget.ExhaustedError
	if errors.As(err, &exhausted) {
		tk.k.RecordExit(tk.task, identity.Cancelled("budget_exhausted"))
	}
	return err
}

// SendMessage sends env on channel via the underlying kernel, then charges
// one message unit against the task's budget (spec §4.8 "send_message …
// consume[s] 1 message unit"). The send itself is unmetered on failure: a
// channel error or full queue never touches the budget.
func (tk *TaskKernel) SendMessage(channel ids.ChannelId, env ipc.Envelope) error {
	if err := tk.k.SendMessage(channel, env); err != nil {
		return err
	}
	if tk.budget == nil {
		return nil
	}
	return tk.cancelOnExhaustion(tk.budget.TryConsume(budget.ResourceMessages, 1, "kernel.send_message"))
}

// ReceiveMessage receives from channel via the underlying kernel, then
// charges one message unit against the task's budget. A timeout, channel
// error, or deadlock is returned unmetered, as no message was delivered.
func (tk *TaskKernel) ReceiveMessage(channel ids.ChannelId, timeout *vtime.Duration) (ipc.Envelope, error) {
	env, err := tk.k.ReceiveMessage(channel, timeout)
	if err != nil {
		return env, err
	}
	if tk.budget == nil {
		return env, nil
	}
	return env, tk.cancelOnExhaustion(tk.budget.TryConsume(budget.ResourceMessages, 1, "kernel.receive_message"))
}

// Sleep advances virtual time by d via the underlying kernel, then charges d
// CPU ticks against the task's budget (spec §4.8 "sleep(d) may consume CPU
// ticks proportional to d"; this implementation's deterministic conversion
// is 1 tick per unit of virtual time slept).
func (tk *TaskKernel) Sleep(d vtime.Duration) error {
	tk.k.Sleep(d)
	if tk.budget == nil {
		return nil
	}
	return tk.cancelOnExhaustion(tk.budget.TryConsume(budget.ResourceCPUTicks, uint64(d), "kernel.sleep"))
}

// NewTransaction returns a transaction against store whose Commit charges
// the task's budget, mirroring Send/Receive/Sleep above.
func (tk *TaskKernel) NewTransaction(store *storage.Store) *storage.Transaction {
	return store.NewTransactionWithBudget(tk.budget)
}

// CommitTransaction commits tx and, on BudgetExhausted, cancels the task's
// execution (spec §4.8 "Storage commit consumes 1 storage op" + "Exhaustion
// cascades to cancellation").
func (tk *TaskKernel) CommitTransaction(tx *storage.Transaction) error {
	return tk.cancelOnExhaustion(tx.Commit())
}
