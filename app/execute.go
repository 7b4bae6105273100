package app

import (
	"context"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/x/dispatch"
	"github.com/keygate/vault/x/txlog"
)

// Messages of the statuses returned without dispatching.
const (
	msgNotFound        = "proposal not found"
	msgThresholdNotMet = "Threshold not met"
	msgInProgress      = "execution already in progress"
	msgExecuted        = "proposal already executed"
)

// Execute dispatches the proposal to its ledger adapter once it has enough
// approvals, and records the outcome in the transaction log. Anybody may
// trigger the execution.
//
// The proposal is marked as in flight while the adapter runs, so that a
// concurrent call cannot transfer the funds twice. A completed proposal
// cannot be executed again, a failed one can.
func (v *Vault) Execute(ctx context.Context, id uint64) vault.IntentStatus {
	ctx = vault.WithLogInfo(v.context(ctx), "proposal", id)
	logger := vault.GetLogger(ctx)

	req, status, ok := v.begin(id)
	if !ok {
		logger.Info("not executed", "status", status.String())
		return status
	}

	status = v.adapters.Dispatch(ctx, req)

	if err := v.record(ctx, req, status); err != nil {
		// The proposal stays in flight: its outcome is unknown to the
		// state and it must not be dispatched again.
		logger.Error("cannot record the execution", "status", status.String(), "err", err)
		return status
	}
	v.finish(id)
	return status
}

// begin checks that the proposal can be executed and marks it as in flight.
func (v *Vault) begin(id uint64) (dispatch.Request, vault.IntentStatus, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var (
		req    dispatch.Request
		status vault.IntentStatus
	)
	err := v.store.View(func(db vault.ReadOnlyKVStore) error {
		p, err := v.proposals.Get(db, id)
		if errors.ErrNotFound.Is(err) {
			status = vault.Failed(msgNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		met, err := v.threshold.IsMet(db, p.Approvals())
		if err != nil {
			return err
		}
		switch _, running := v.inFlight[id]; {
		case !met:
			status = vault.Failed(msgThresholdNotMet)
		case running:
			status = vault.Failed(msgInProgress)
		case p.Executed:
			status = vault.Failed(msgExecuted)
		default:
			req = dispatch.Request{
				ProposalID: p.ID,
				To:         p.To,
				Token:      p.Token,
				Network:    p.Network,
				Amount:     p.Amount,
				Kind:       p.Kind,
			}
		}
		return nil
	})
	if err != nil {
		return req, vault.Failed(err.Error()), false
	}
	if status.Code != "" {
		return req, status, false
	}
	v.inFlight[id] = struct{}{}
	return req, status, true
}

func (v *Vault) finish(id uint64) {
	v.mu.Lock()
	delete(v.inFlight, id)
	v.mu.Unlock()
}

// record appends the outcome to the transaction log and marks a completed
// proposal as executed.
func (v *Vault) record(ctx context.Context, req dispatch.Request, status vault.IntentStatus) error {
	executedAt, _ := vault.RequestTime(ctx)
	return v.store.Update(func(db vault.KVStore) error {
		tx := txlog.Transaction{
			ProposalID: req.ProposalID,
			Status:     status,
			To:         req.To,
			Token:      req.Token,
			Network:    req.Network,
			Amount:     req.Amount,
			Kind:       req.Kind,
			ExecutedAt: vault.AsUnixTime(executedAt),
		}
		if _, err := v.txs.Append(db, &tx); err != nil {
			return errors.Wrap(err, "append transaction")
		}
		if status.IsCompleted() {
			return v.proposals.MarkExecuted(db, req.ProposalID)
		}
		return nil
	})
}
