package editor

import (
	"context"

	"orgmatrix/internal/core"
	"orgmatrix/pkg/domain"
)

// OrganizationWriter is the slice of the core service a form draft needs.
type OrganizationWriter interface {
	GetOrganization(id string) (domain.Organization, bool)
	CreateOrganization(ctx context.Context, draft domain.Organization) (domain.Organization, domain.Result, error)
	UpdateOrganization(ctx context.Context, id string, patch core.OrganizationPatch) (domain.Organization, bool, domain.Result, error)
}

// OrganizationForm is a field-level draft over one organization record. With
// an empty id it drafts a new record; Commit then creates instead of
// patching.
type OrganizationForm struct {
	store OrganizationWriter
	id    string

	base  domain.Organization
	draft domain.Organization
	state State
}

// NewOrganizationForm builds a form synced to the stored record, or an empty
// draft when id is "" (create flow).
func NewOrganizationForm(store OrganizationWriter, id string) *OrganizationForm {
	f := &OrganizationForm{store: store, id: id}
	f.Refresh()
	return f
}

// ID returns the record id the form is bound to, empty for a create draft.
func (f *OrganizationForm) ID() string { return f.id }

// State reports the current draft state.
func (f *OrganizationForm) State() State { return f.state }

// Draft returns the local uncommitted record.
func (f *OrganizationForm) Draft() domain.Organization { return f.draft }

// Refresh resyncs from the store, discarding local edits. A record deleted
// underneath the form degrades it to an empty create draft.
func (f *OrganizationForm) Refresh() {
	if f.id != "" {
		if stored, ok := f.store.GetOrganization(f.id); ok {
			f.base = stored
			f.draft = stored
			f.state = StateClean
			return
		}
		f.id = ""
	}
	f.base = domain.Organization{}
	f.draft = domain.Organization{}
	f.state = StateClean
}

// SetName edits the draft name.
func (f *OrganizationForm) SetName(name string) {
	f.draft.Name = name
	f.reconcile()
}

// SetCode edits the draft code.
func (f *OrganizationForm) SetCode(code string) {
	f.draft.Code = code
	f.reconcile()
}

// SetDomain edits the draft domain.
func (f *OrganizationForm) SetDomain(domainName string) {
	f.draft.Domain = domainName
	f.reconcile()
}

// SetWhiteLabeled edits the draft white-label flag.
func (f *OrganizationForm) SetWhiteLabeled(whiteLabeled bool) {
	f.draft.WhiteLabeled = whiteLabeled
	f.reconcile()
}

// SetLogoURL edits the draft branding logo.
func (f *OrganizationForm) SetLogoURL(url string) {
	f.draft.Branding.LogoURL = url
	f.reconcile()
}

// SetContactEmail edits the draft contact email.
func (f *OrganizationForm) SetContactEmail(email string) {
	f.draft.ContactEmail = email
	f.reconcile()
}

func (f *OrganizationForm) reconcile() {
	if f.draft == f.base {
		f.state = StateClean
	} else {
		f.state = StateDirty
	}
}

// Commit writes the draft through the service: a create for new drafts, a
// shallow patch of only the edited fields otherwise. A clean draft is a
// no-op. On failure the draft returns to Dirty with local edits intact.
func (f *OrganizationForm) Commit(ctx context.Context) error {
	if f.state == StateClean {
		return nil
	}
	f.state = StateSaving

	if f.id == "" {
		created, _, err := f.store.CreateOrganization(ctx, f.draft)
		if err != nil {
			f.state = StateDirty
			return err
		}
		f.id = created.ID
		f.base = created
		f.draft = created
		f.state = StateClean
		return nil
	}

	updated, found, _, err := f.store.UpdateOrganization(ctx, f.id, f.patch())
	if err != nil {
		f.state = StateDirty
		return err
	}
	if !found {
		// Deleted underneath the draft; the store wins.
		f.id = ""
		f.Refresh()
		return nil
	}
	f.base = updated
	f.draft = updated
	f.state = StateClean
	return nil
}

// patch builds the shallow patch of fields the draft changed.
func (f *OrganizationForm) patch() core.OrganizationPatch {
	var p core.OrganizationPatch
	if f.draft.Name != f.base.Name {
		name := f.draft.Name
		p.Name = &name
	}
	if f.draft.Code != f.base.Code {
		code := f.draft.Code
		p.Code = &code
	}
	if f.draft.Domain != f.base.Domain {
		domainName := f.draft.Domain
		p.Domain = &domainName
	}
	if f.draft.WhiteLabeled != f.base.WhiteLabeled {
		white := f.draft.WhiteLabeled
		p.WhiteLabeled = &white
	}
	if f.draft.Branding != f.base.Branding {
		branding := f.draft.Branding
		p.Branding = &branding
	}
	if f.draft.ContactEmail != f.base.ContactEmail {
		email := f.draft.ContactEmail
		p.ContactEmail = &email
	}
	return p
}
