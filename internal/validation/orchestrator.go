// Package validation drives single-address and bulk validation calls
// and reconciles the verdicts into the contact directory.
package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/model"
)

// API is the slice of the gateway client the orchestrator needs.
type API interface {
	ValidateOne(ctx context.Context, email string, useSMTPProbe bool) (model.ValidationResult, error)
	ValidateBulk(ctx context.Context, useSMTPProbe bool) (int, error)
}

// Orchestrator mediates between the validation endpoints and the
// directory. The SMTP probe flag is a caller decision on every call;
// call sites that always probe pass a constant true.
type Orchestrator struct {
	api API
	dir *directory.Directory
	log *zap.Logger
}

// New creates an orchestrator bound to the given directory.
func New(api API, dir *directory.Directory, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{api: api, dir: dir, log: log}
}

// ValidateOne probes a single address and applies the verdict to every
// cached contact with a matching canonical email. It never creates
// contacts; the server may, but the cache learns of that only on the
// next refresh.
func (o *Orchestrator) ValidateOne(ctx context.Context, email string, useSMTPProbe bool) (model.ValidationResult, error) {
	addr := model.CanonicalEmail(email)
	if addr == "" {
		return model.ValidationResult{}, fmt.Errorf("validate: empty email")
	}

	res, err := o.api.ValidateOne(ctx, addr, useSMTPProbe)
	if err != nil {
		return model.ValidationResult{}, err
	}

	matched := o.dir.ApplyValidation(res)
	o.log.Debug("validation applied",
		zap.String("email", addr),
		zap.String("status", res.Status),
		zap.Bool("smtp_probe", useSMTPProbe),
		zap.Int("matched", matched),
	)
	return res, nil
}

// ValidateBulk triggers server-side validation of all pending contacts.
// The server does not report which subset changed, so the directory is
// refreshed afterward. A refresh failure is reported alongside the
// count: the validation itself succeeded.
func (o *Orchestrator) ValidateBulk(ctx context.Context, useSMTPProbe bool) (int, error) {
	count, err := o.api.ValidateBulk(ctx, useSMTPProbe)
	if err != nil {
		return 0, err
	}

	if _, err := o.dir.Refresh(ctx); err != nil {
		return count, fmt.Errorf("%d contacts validated but refresh failed: %w", count, err)
	}
	return count, nil
}
