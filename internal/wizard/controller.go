// internal/wizard/controller.go
package wizard

import (
	"context"

	"member-registration/internal/common/logger"
	"member-registration/internal/models"
)

// Controller owns the live wizard state for one session: it loads it at
// start, persists after every transition and clears everything when the
// registration completes.
type Controller struct {
	storage Storage
	state   State
	logger  logger.Logger
}

func NewController(ctx context.Context, storage Storage, log logger.Logger) (*Controller, error) {
	state, err := storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Controller{
		storage: storage,
		state:   state,
		logger:  log,
	}, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Goto resolves a navigation request through the step gate and returns the
// step actually reached.
func (c *Controller) Goto(ctx context.Context, target Step) (Step, error) {
	gated := c.state.GateFor(target)
	if gated != target {
		c.logger.Info("step redirected", map[string]interface{}{
			"requested": target.String(),
			"landed":    gated.String(),
		})
	}
	c.state.CurrentStep = gated
	return gated, c.storage.Save(ctx, c.state)
}

func (c *Controller) apply(ctx context.Context, next State) error {
	c.logger.Debug("wizard transition", map[string]interface{}{
		"fromStep": c.state.CurrentStep.String(),
		"toStep":   next.CurrentStep.String(),
	})
	c.state = next
	return c.storage.Save(ctx, c.state)
}

func (c *Controller) SetIdentity(ctx context.Context, id Identity) error {
	return c.apply(ctx, c.state.WithIdentity(id))
}

func (c *Controller) SetBasicInfo(ctx context.Context, b models.BasicInfo) error {
	return c.apply(ctx, c.state.WithBasicInfo(b))
}

func (c *Controller) SetContact(ctx context.Context, contact models.Contact) error {
	return c.apply(ctx, c.state.WithContact(contact))
}

func (c *Controller) SetPersonal(ctx context.Context, p models.PersonalInfo) error {
	return c.apply(ctx, c.state.WithPersonal(p))
}

func (c *Controller) SetAccount(ctx context.Context, a Account) error {
	return c.apply(ctx, c.state.WithAccount(a))
}

// Back navigates one step backward, discarding the departed step's section.
func (c *Controller) Back(ctx context.Context) error {
	return c.apply(ctx, c.state.Back())
}

// Complete clears every persisted key after a successful submission.
func (c *Controller) Complete(ctx context.Context) error {
	c.state = c.state.Reset()
	return c.storage.Clear(ctx)
}
