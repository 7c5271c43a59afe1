package payments

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// VerifyRechargeJobArgs is the delayed fallback poll for one session.
type VerifyRechargeJobArgs struct {
	SessionID string `json:"session_id"`
}

func (VerifyRechargeJobArgs) Kind() string { return "payment_verify" }

// VerifyRechargeWorker polls the provider for sessions that never got a
// webhook or client verification. A still-pending session returns an error
// so river retries with backoff.
type VerifyRechargeWorker struct {
	river.WorkerDefaults[VerifyRechargeJobArgs]
	reconciler *Reconciler
}

// NewVerifyRechargeWorker returns the worker.
func NewVerifyRechargeWorker(reconciler *Reconciler) *VerifyRechargeWorker {
	return &VerifyRechargeWorker{reconciler: reconciler}
}

func (w *VerifyRechargeWorker) Work(ctx context.Context, job *river.Job[VerifyRechargeJobArgs]) error {
	recharge, err := w.reconciler.VerifyRecharge(ctx, job.Args.SessionID)
	if err != nil {
		return fmt.Errorf("verify recharge %s: %w", job.Args.SessionID, err)
	}
	if recharge.Status == models.RechargeStatusPending {
		return fmt.Errorf("session %s still pending at provider", job.Args.SessionID)
	}
	return nil
}
