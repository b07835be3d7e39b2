// Package wizard implements the multi-step registration flow driven on the
// client side: an immutable state value holding the five form sections, step
// gating, one-way backward invalidation and pluggable persistence.
package wizard

import "member-registration/internal/models"

// Step identifies one screen of the wizard, in fill-in order.
type Step int

const (
	StepIdentity Step = iota
	StepBasicInfo
	StepContact
	StepPersonal
	StepAccount

	stepCount
)

func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepBasicInfo:
		return "basicInfo"
	case StepContact:
		return "contact"
	case StepPersonal:
		return "personalInfo"
	case StepAccount:
		return "account"
	default:
		return "unknown"
	}
}

// Identity is the verified claim collected on the first step.
type Identity struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// Account holds the credentials chosen on the final step.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// State is the whole wizard aggregate. It is a value: mutators return a new
// State and never touch the receiver, so a held copy can't change underneath
// its owner.
type State struct {
	Identity    Identity            `json:"identity"`
	BasicInfo   models.BasicInfo    `json:"basicInfo"`
	Contact     models.Contact      `json:"contact"`
	Personal    models.PersonalInfo `json:"personalInfo"`
	Account     Account             `json:"account"`
	CurrentStep Step                `json:"currentStep"`
}

// NewState returns an empty wizard positioned at the first step.
func NewState() State {
	return State{CurrentStep: StepIdentity}
}

// ==========================
// Section completeness
// ==========================

func (s State) IdentityComplete() bool {
	return s.Identity.StudentID != "" && s.Identity.Name != ""
}

func (s State) BasicInfoComplete() bool {
	b := s.BasicInfo
	return b.Year != "" && b.Gender != "" && b.College != "" && b.Major != "" && b.TechGroup != ""
}

func (s State) ContactComplete() bool {
	// QQ is optional
	return s.Contact.Phone != "" && s.Contact.Email != ""
}

func (s State) PersonalComplete() bool {
	p := s.Personal
	return p.IDCard != "" && p.Birthday != "" && p.Hometown != "" && p.Ethnicity != "" && p.HighSchool != ""
}

func (s State) AccountComplete() bool {
	return s.Account.Username != "" && s.Account.Password != ""
}

// sectionComplete reports whether the section owned by the given step is
// filled in.
func (s State) sectionComplete(step Step) bool {
	switch step {
	case StepIdentity:
		return s.IdentityComplete()
	case StepBasicInfo:
		return s.BasicInfoComplete()
	case StepContact:
		return s.ContactComplete()
	case StepPersonal:
		return s.PersonalComplete()
	case StepAccount:
		return s.AccountComplete()
	default:
		return false
	}
}

// Complete reports whether every section is filled in.
func (s State) Complete() bool {
	for step := StepIdentity; step < stepCount; step++ {
		if !s.sectionComplete(step) {
			return false
		}
	}
	return true
}

// FirstIncompleteStep returns the earliest step whose section is not yet
// filled in, or StepAccount when everything before it is done.
func (s State) FirstIncompleteStep() Step {
	for step := StepIdentity; step < stepCount; step++ {
		if !s.sectionComplete(step) {
			return step
		}
	}
	return StepAccount
}

// GateFor decides which step a navigation request to target actually lands
// on: the target itself when every earlier section is complete, otherwise
// the earliest incomplete step.
func (s State) GateFor(target Step) Step {
	for step := StepIdentity; step < target; step++ {
		if !s.sectionComplete(step) {
			return step
		}
	}
	return target
}

// ==========================
// Transitions
// ==========================

// advance moves CurrentStep forward past the step just filled, never
// backward.
func (s State) advance(filled Step) State {
	next := filled + 1
	if next >= stepCount {
		next = StepAccount
	}
	if next > s.CurrentStep {
		s.CurrentStep = next
	}
	return s
}

func (s State) WithIdentity(id Identity) State {
	s.Identity = id
	return s.advance(StepIdentity)
}

func (s State) WithBasicInfo(b models.BasicInfo) State {
	s.BasicInfo = b
	return s.advance(StepBasicInfo)
}

func (s State) WithContact(c models.Contact) State {
	s.Contact = c
	return s.advance(StepContact)
}

func (s State) WithPersonal(p models.PersonalInfo) State {
	s.Personal = p
	return s.advance(StepPersonal)
}

func (s State) WithAccount(a Account) State {
	s.Account = a
	s.CurrentStep = StepAccount
	return s
}

// Back leaves the current step, discarding that step's own section. Earlier
// sections are untouched; returning to a departed step starts it blank.
func (s State) Back() State {
	switch s.CurrentStep {
	case StepIdentity:
		return s
	case StepBasicInfo:
		s.BasicInfo = models.BasicInfo{}
	case StepContact:
		s.Contact = models.Contact{}
	case StepPersonal:
		s.Personal = models.PersonalInfo{}
	case StepAccount:
		s.Account = Account{}
	}
	s.CurrentStep--
	return s
}

// Reset discards everything, used after a successful submission.
func (s State) Reset() State {
	return NewState()
}
