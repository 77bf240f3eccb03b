package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/store"
)

var (
	ErrAccessDenied          = errors.New("access denied")
	ErrJustificationRequired = errors.New("justification required")
)

// VaultService owns the vault workflow: who may read a secret value, and how
// a member asks for that right. The store keeps the rows; the rules live
// here.
type VaultService struct {
	store *store.Store
	now   func() time.Time
}

func NewVaultService(st *store.Store) *VaultService {
	return &VaultService{
		store: st,
		now:   time.Now,
	}
}

// secretFor loads a secret and checks it belongs to the principal's project.
// Cross-project access reads as denial, not absence, so callers can map it
// to the right status code.
func (v *VaultService) secretFor(ctx context.Context, secretID string, p *Principal) (*model.Secret, error) {
	sec, err := v.store.GetSecret(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if sec.ProjectID != p.ProjectID {
		return nil, ErrAccessDenied
	}
	return sec, nil
}

// RequestAccess files a pending access request on behalf of the principal.
// A justification is mandatory; duplicates and re-requests after a denial
// are allowed and each create a fresh pending row.
func (v *VaultService) RequestAccess(ctx context.Context, secretID string, p *Principal, justification string) (*model.AccessRequest, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, ErrJustificationRequired
	}

	if _, err := v.secretFor(ctx, secretID, p); err != nil {
		return nil, err
	}

	req := &model.AccessRequest{
		SecretID:        secretID,
		RequestedBy:     p.MemberID,
		RequestedByName: p.Name,
		Justification:   justification,
	}
	if err := v.store.CreateAccessRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleRequest records a manager's decision on a pending request. The
// stored status changes exactly once; a second decision surfaces
// store.ErrAlreadyHandled. The expiry is only honored on approval.
func (v *VaultService) HandleRequest(ctx context.Context, requestID, decision string, p *Principal, expiresAt *time.Time) (*model.AccessRequest, error) {
	if !p.IsManager() {
		return nil, ErrAccessDenied
	}

	req, err := v.store.GetAccessRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := v.secretFor(ctx, req.SecretID, p); err != nil {
		return nil, err
	}

	return v.store.HandleAccessRequest(ctx, requestID, decision, p.MemberID, p.Name, expiresAt)
}

// RevealSecret returns the secret value for an authorized principal and
// records the read in the audit fields. Team leads always read; everyone
// else needs their latest request to be approved and unexpired.
func (v *VaultService) RevealSecret(ctx context.Context, secretID string, p *Principal) (*model.Secret, error) {
	sec, err := v.secretFor(ctx, secretID, p)
	if err != nil {
		return nil, err
	}

	if !p.IsManager() {
		req, err := v.store.LatestAccessRequest(ctx, secretID, p.MemberID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrAccessDenied
			}
			return nil, err
		}
		if !req.GrantsAccess(v.now()) {
			return nil, ErrAccessDenied
		}
	}

	if err := v.store.TouchSecretAccess(ctx, secretID, p.MemberID); err != nil {
		return nil, err
	}
	return v.store.GetSecret(ctx, sec.ID)
}

// StatusFor derives the principal's standing on a secret:
// pending, approved, denied, expired, or none. Only the latest request
// counts; older rows are history.
func (v *VaultService) StatusFor(ctx context.Context, secretID string, p *Principal) (string, *model.AccessRequest, error) {
	if _, err := v.secretFor(ctx, secretID, p); err != nil {
		return "", nil, err
	}

	req, err := v.store.LatestAccessRequest(ctx, secretID, p.MemberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.RequestNone, nil, nil
		}
		return "", nil, err
	}
	return req.EffectiveStatus(v.now()), req, nil
}

// ListRequests returns the access requests visible to the principal:
// managers see every request against the project's secrets, members see
// only their own.
func (v *VaultService) ListRequests(ctx context.Context, p *Principal) ([]model.AccessRequest, error) {
	requesterID := ""
	if !p.IsManager() {
		requesterID = p.MemberID
	}
	return v.store.ListAccessRequestsForProject(ctx, p.ProjectID, requesterID)
}
