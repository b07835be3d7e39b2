// internal/wizard/storage.go
package wizard

import "context"

// Blob keys under which the sections persist. Each section is stored
// independently so a crash mid-flow loses at most the section being edited.
const (
	keyInitial  = "registration-initial"
	keyBasic    = "registration-basic"
	keyContact  = "registration-contact"
	keyPersonal = "registration-personal"
	keyAccount  = "registration-account"
	keyGlobal   = "registration-global"
)

var allKeys = []string{keyInitial, keyBasic, keyContact, keyPersonal, keyAccount, keyGlobal}

// globalBlob carries the cross-section position marker.
type globalBlob struct {
	CurrentStep Step `json:"currentStep"`
}

// Storage persists wizard state between sessions. Load on an empty backend
// returns a fresh state, not an error. Clear removes every key together.
type Storage interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Clear(ctx context.Context) error
}
