package service

import (
	"context"
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/store"
)

type vaultFixture struct {
	store  *store.Store
	vault  *VaultService
	lead   *Principal
	member *Principal
	secret *model.Secret
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open("sqlite", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	p := &model.Project{Name: "vaulted", OneLineIdea: "an idea"}
	if err := st.CreateProject(ctx, p, "Alice"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	bob := &model.Member{ProjectID: p.ID, Name: "Bob"}
	if err := st.AddMember(ctx, bob); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	sec := &model.Secret{
		ProjectID:      p.ID,
		Name:           "STRIPE_KEY",
		EncryptedValue: "sk_test_abc",
		CreatedBy:      p.Members[0].ID,
		CreatedByName:  "Alice",
	}
	if err := st.CreateSecret(ctx, sec); err != nil {
		t.Fatalf("CreateSecret: %v", err)
	}

	return &vaultFixture{
		store:  st,
		vault:  NewVaultService(st),
		lead:   &Principal{ProjectID: p.ID, MemberID: p.Members[0].ID, Name: "Alice", Role: model.RoleTeamLead},
		member: &Principal{ProjectID: p.ID, MemberID: bob.ID, Name: "Bob", Role: model.RoleMember},
		secret: sec,
	}
}

func TestRequestAccess_RequiresJustification(t *testing.T) {
	f := newVaultFixture(t)

	if _, err := f.vault.RequestAccess(context.Background(), f.secret.ID, f.member, "   "); err != ErrJustificationRequired {
		t.Errorf("expected ErrJustificationRequired, got %v", err)
	}
}

func TestRequestAccess_CreatesPending(t *testing.T) {
	f := newVaultFixture(t)

	req, err := f.vault.RequestAccess(context.Background(), f.secret.ID, f.member, "need it")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	if req.Status != model.RequestPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
	if req.RequestedBy != f.member.MemberID || req.RequestedByName != "Bob" {
		t.Errorf("requester fields wrong: %+v", req)
	}
}

func TestRequestAccess_WrongProject(t *testing.T) {
	f := newVaultFixture(t)

	outsider := &Principal{ProjectID: "other-project", MemberID: "x", Name: "Eve", Role: model.RoleMember}
	if _, err := f.vault.RequestAccess(context.Background(), f.secret.ID, outsider, "let me in"); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRevealSecret_ManagerAlwaysAllowed(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	sec, err := f.vault.RevealSecret(ctx, f.secret.ID, f.lead)
	if err != nil {
		t.Fatalf("RevealSecret: %v", err)
	}
	if sec.EncryptedValue != "sk_test_abc" {
		t.Errorf("value = %q", sec.EncryptedValue)
	}
	if sec.AccessCount != 1 {
		t.Errorf("access count = %d, want 1", sec.AccessCount)
	}
	if sec.LastAccessedBy != f.lead.MemberID {
		t.Errorf("last_accessed_by = %q", sec.LastAccessedBy)
	}
}

func TestRevealSecret_MemberWithoutRequestDenied(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	if _, err := f.vault.RevealSecret(ctx, f.secret.ID, f.member); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}

	// A denied reveal leaves the audit counter alone.
	sec, _ := f.store.GetSecret(ctx, f.secret.ID)
	if sec.AccessCount != 0 {
		t.Errorf("access count = %d, want 0 after denied reveal", sec.AccessCount)
	}
}

func TestRevealSecret_ApprovedRequestGrantsAccess(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	req, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "demo prep")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}

	// Pending is not enough.
	if _, err := f.vault.RevealSecret(ctx, f.secret.ID, f.member); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied while pending, got %v", err)
	}

	expiry := time.Now().UTC().Add(time.Hour)
	if _, err := f.vault.HandleRequest(ctx, req.ID, model.RequestApproved, f.lead, &expiry); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	sec, err := f.vault.RevealSecret(ctx, f.secret.ID, f.member)
	if err != nil {
		t.Fatalf("RevealSecret after approval: %v", err)
	}
	if sec.EncryptedValue != "sk_test_abc" {
		t.Errorf("value = %q", sec.EncryptedValue)
	}
	if sec.AccessCount != 1 {
		t.Errorf("access count = %d, want 1", sec.AccessCount)
	}
}

func TestRevealSecret_ExpiredGrantDenied(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	req, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "demo prep")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	expiry := time.Now().UTC().Add(time.Hour)
	if _, err := f.vault.HandleRequest(ctx, req.ID, model.RequestApproved, f.lead, &expiry); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	// Move the service clock past the expiry. The stored row is untouched;
	// only the derived view flips.
	f.vault.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	if _, err := f.vault.RevealSecret(ctx, f.secret.ID, f.member); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied after expiry, got %v", err)
	}

	status, _, err := f.vault.StatusFor(ctx, f.secret.ID, f.member)
	if err != nil {
		t.Fatalf("StatusFor: %v", err)
	}
	if status != model.RequestExpired {
		t.Errorf("status = %q, want expired", status)
	}

	stored, _ := f.store.GetAccessRequest(ctx, req.ID)
	if stored.Status != model.RequestApproved {
		t.Errorf("stored status = %q, want approved (expiry is derived only)", stored.Status)
	}
}

func TestHandleRequest_MemberDenied(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	req, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "j")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}

	if _, err := f.vault.HandleRequest(ctx, req.ID, model.RequestApproved, f.member, nil); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied for non-manager, got %v", err)
	}
}

func TestHandleRequest_SecondDecisionRejected(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	req, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "j")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	if _, err := f.vault.HandleRequest(ctx, req.ID, model.RequestDenied, f.lead, nil); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if _, err := f.vault.HandleRequest(ctx, req.ID, model.RequestApproved, f.lead, nil); err != store.ErrAlreadyHandled {
		t.Errorf("expected ErrAlreadyHandled, got %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	status, req, err := f.vault.StatusFor(ctx, f.secret.ID, f.member)
	if err != nil {
		t.Fatalf("StatusFor: %v", err)
	}
	if status != model.RequestNone || req != nil {
		t.Errorf("status = %q, req = %v; want none, nil", status, req)
	}

	created, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "j")
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	status, _, _ = f.vault.StatusFor(ctx, f.secret.ID, f.member)
	if status != model.RequestPending {
		t.Errorf("status = %q, want pending", status)
	}

	if _, err := f.vault.HandleRequest(ctx, created.ID, model.RequestDenied, f.lead, nil); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	status, _, _ = f.vault.StatusFor(ctx, f.secret.ID, f.member)
	if status != model.RequestDenied {
		t.Errorf("status = %q, want denied", status)
	}

	// A fresh request after a denial wins as the latest.
	if _, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "try again"); err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	status, _, _ = f.vault.StatusFor(ctx, f.secret.ID, f.member)
	if status != model.RequestPending {
		t.Errorf("status = %q, want pending after re-request", status)
	}
}

func TestListRequests_Visibility(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	if _, err := f.vault.RequestAccess(ctx, f.secret.ID, f.member, "mine"); err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}

	carol := &model.Member{ProjectID: f.lead.ProjectID, Name: "Carol"}
	if err := f.store.AddMember(ctx, carol); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	carolP := &Principal{ProjectID: f.lead.ProjectID, MemberID: carol.ID, Name: "Carol", Role: model.RoleMember}
	if _, err := f.vault.RequestAccess(ctx, f.secret.ID, carolP, "hers"); err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}

	all, err := f.vault.ListRequests(ctx, f.lead)
	if err != nil {
		t.Fatalf("ListRequests(lead): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("lead sees %d requests, want 2", len(all))
	}

	mine, err := f.vault.ListRequests(ctx, f.member)
	if err != nil {
		t.Fatalf("ListRequests(member): %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("member sees %d requests, want 1", len(mine))
	}
	if mine[0].RequestedBy != f.member.MemberID {
		t.Errorf("member sees someone else's request: %+v", mine[0])
	}
}
