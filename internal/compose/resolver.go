// Package compose resolves a recipient draft into the final quick-send
// payload: selected contact ids merged with free-typed addresses,
// deduplicated per role, optionally pre-validated.
package compose

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/model"
)

// PolicyError reports a draft that fails send policy. It is raised
// before any network call.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("invalid draft: %s", e.Message)
}

// ConsistencyError reports a selected contact id absent from the
// directory. A correct UI never offers such an id, so this is treated
// as fatal rather than recovered.
type ConsistencyError struct {
	ID int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("selected contact %d is not in the directory", e.ID)
}

// Validator is the slice of the validation orchestrator the resolver
// uses for the validate-extras policy.
type Validator interface {
	ValidateOne(ctx context.Context, email string, useSMTPProbe bool) (model.ValidationResult, error)
}

// Draft is the ephemeral per-compose state. The extra fields hold the
// raw free-typed text; ParseExtras turns them into address sequences.
// The same contact may appear in more than one role.
type Draft struct {
	Name      string
	FromEmail string
	Subject   string
	TextBody  string
	HTMLBody  string

	ToIDs  []int
	CcIDs  []int
	BccIDs []int

	ToExtra  string
	CcExtra  string
	BccExtra string

	ValidateExtras bool
}

// Resolution is the resolved draft: the outbound payload plus the
// resolved contacts and any pre-validation verdicts, for display. The
// verdicts inform the operator; they never remove an address from the
// payload, since gating is the server's job.
type Resolution struct {
	Request model.ComposeRequest

	To  []model.Contact
	Cc  []model.Contact
	Bcc []model.Contact

	ExtraResults []model.ValidationResult
}

// Resolver turns drafts into send payloads against the current
// directory state.
type Resolver struct {
	dir       *directory.Directory
	validator Validator
	log       *zap.Logger
}

// New creates a resolver. validator may be nil when the validate-extras
// policy is never used.
func New(dir *directory.Directory, validator Validator, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{dir: dir, validator: validator, log: log}
}

// ParseExtras splits free-typed text into candidate addresses on any
// run of comma, whitespace, or semicolon, preserving order. Exact
// duplicates are kept: deduplication of extras belongs to the send
// endpoint, and this parse must stay faithful.
func ParseExtras(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// Resolve produces the send payload for a draft. It fails fast, before
// any network call, when the from address or subject is empty or the
// draft has no recipients at all.
func (r *Resolver) Resolve(ctx context.Context, d Draft) (*Resolution, error) {
	from := model.CanonicalEmail(d.FromEmail)
	subject := strings.TrimSpace(d.Subject)
	if from == "" || subject == "" {
		return nil, &PolicyError{Message: "from address and subject are required"}
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = "Quick Send"
	}

	res := &Resolution{}
	var err error

	toIDs := dedupeIDs(d.ToIDs)
	ccIDs := dedupeIDs(d.CcIDs)
	bccIDs := dedupeIDs(d.BccIDs)

	// A contact in two roles keeps both assignments; only duplicates
	// within one role collapse.
	if res.To, err = r.lookup(toIDs); err != nil {
		return nil, err
	}
	if res.Cc, err = r.lookup(ccIDs); err != nil {
		return nil, err
	}
	if res.Bcc, err = r.lookup(bccIDs); err != nil {
		return nil, err
	}

	toExtra := ParseExtras(d.ToExtra)
	ccExtra := ParseExtras(d.CcExtra)
	bccExtra := ParseExtras(d.BccExtra)

	if len(toIDs)+len(ccIDs)+len(bccIDs)+len(toExtra)+len(ccExtra)+len(bccExtra) == 0 {
		return nil, &PolicyError{Message: "no recipients"}
	}

	if d.ValidateExtras {
		results, err := r.validateExtras(ctx, toExtra, ccExtra, bccExtra)
		if err != nil {
			return nil, err
		}
		res.ExtraResults = results
	}

	res.Request = model.ComposeRequest{
		Name:           name,
		Subject:        subject,
		FromEmail:      from,
		TextBody:       d.TextBody,
		HTMLBody:       d.HTMLBody,
		ToIDs:          toIDs,
		CcIDs:          ccIDs,
		BccIDs:         bccIDs,
		ToExtra:        toExtra,
		CcExtra:        ccExtra,
		BccExtra:       bccExtra,
		ValidateExtras: d.ValidateExtras,
	}
	return res, nil
}

// lookup resolves ids to cached contacts, preserving selection order.
func (r *Resolver) lookup(ids []int) ([]model.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	contacts := make([]model.Contact, 0, len(ids))
	for _, id := range ids {
		c, ok := r.dir.ByID(id)
		if !ok {
			return nil, &ConsistencyError{ID: id}
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// validateExtras probes each distinct typed address once, across all
// roles. A rejecting verdict is recorded but never filters the address
// out of the payload; only a transport failure aborts the resolve.
func (r *Resolver) validateExtras(ctx context.Context, lists ...[]string) ([]model.ValidationResult, error) {
	if r.validator == nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	var results []model.ValidationResult
	for _, list := range lists {
		for _, addr := range list {
			canonical := model.CanonicalEmail(addr)
			if seen[canonical] {
				continue
			}
			seen[canonical] = true

			result, err := r.validator.ValidateOne(ctx, canonical, false)
			if err != nil {
				return nil, fmt.Errorf("validating %s: %w", canonical, err)
			}
			r.log.Debug("extra address validated",
				zap.String("email", canonical),
				zap.String("verdict", result.Verdict),
			)
			results = append(results, result)
		}
	}
	return results, nil
}

// dedupeIDs removes duplicate ids while preserving first-seen order.
func dedupeIDs(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
