// cmd/registration-cli/main.go
//
// Interactive terminal client for the registration wizard. The wizard state
// persists between runs, so an interrupted session resumes at the first
// incomplete step.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"member-registration/internal/common/config"
	"member-registration/internal/common/database"
	"member-registration/internal/common/logger"
	"member-registration/internal/models"
	"member-registration/internal/wizard"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "registration server base URL")
	session := flag.String("session", "default", "wizard session identifier (redis backend)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()

	storage, err := newStorage(cfg, *session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wizard storage failed: %v\n", err)
		os.Exit(1)
	}

	ctrl, err := wizard.NewController(ctx, storage, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wizard state load failed: %v\n", err)
		os.Exit(1)
	}

	cli := &cli{
		ctrl:   ctrl,
		client: &http.Client{Timeout: 30 * time.Second},
		server: strings.TrimRight(*serverURL, "/"),
		in:     bufio.NewReader(os.Stdin),
	}

	if err := cli.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "registration failed: %v\n", err)
		os.Exit(1)
	}
}

func newStorage(cfg *config.Config, session string) (wizard.Storage, error) {
	switch cfg.Wizard.Backend {
	case "redis":
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(context.Background()); err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.Wizard.TTL) * time.Second
		return wizard.NewRedisStorage(rdb.Client, session, ttl), nil
	default:
		dir := cfg.Wizard.StateDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(home, ".member-registration")
		}
		return wizard.NewFileStorage(dir)
	}
}

type cli struct {
	ctrl   *wizard.Controller
	client *http.Client
	server string
	in     *bufio.Reader
}

// run drives the wizard from the first incomplete step through submission.
func (c *cli) run(ctx context.Context) error {
	state := c.ctrl.State()
	if state.CurrentStep != wizard.StepIdentity || state.IdentityComplete() {
		fmt.Printf("Resuming at step: %s\n", state.CurrentStep.String())
	}

	for {
		state = c.ctrl.State()
		step, err := c.ctrl.Goto(ctx, state.CurrentStep)
		if err != nil {
			return err
		}

		var stepErr error
		switch step {
		case wizard.StepIdentity:
			stepErr = c.stepIdentity(ctx)
		case wizard.StepBasicInfo:
			stepErr = c.stepBasicInfo(ctx)
		case wizard.StepContact:
			stepErr = c.stepContact(ctx)
		case wizard.StepPersonal:
			stepErr = c.stepPersonal(ctx)
		case wizard.StepAccount:
			if stepErr = c.stepAccount(ctx); stepErr == nil {
				return c.submit(ctx)
			}
		}
		if stepErr == errGoBack {
			if err := c.ctrl.Back(ctx); err != nil {
				return err
			}
			continue
		}
		if stepErr == errAlreadyCompleted {
			// The confirmation view was already printed; any stale local
			// wizard state is discarded.
			return c.ctrl.Complete(ctx)
		}
		if stepErr != nil {
			return stepErr
		}
	}
}

var (
	errGoBack           = fmt.Errorf("navigate back")
	errAlreadyCompleted = fmt.Errorf("registration already completed")
)

// prompt reads one line. Entering "<" requests backward navigation.
func (c *cli) prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "<" {
		return "", errGoBack
	}
	return line, nil
}

func (c *cli) promptRequired(label string) (string, error) {
	for {
		v, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		fmt.Println("  required, please enter a value (or < to go back)")
	}
}

// ==========================
// Steps
// ==========================

func (c *cli) stepIdentity(ctx context.Context) error {
	fmt.Println("\n-- Step 1/5: Identity --")

	studentID, err := c.promptRequired("Student ID")
	if err != nil {
		return err
	}

	var check struct {
		Enrolled        bool   `json:"enrolled"`
		Completed       bool   `json:"completed"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		InitialPassword string `json:"initialPassword"`
		User            *struct {
			StudentID string `json:"studentId"`
			Name      string `json:"name"`
		} `json:"user"`
	}
	if err := c.get(ctx, "/api/registration/check?studentId="+studentID, &check); err != nil {
		return err
	}
	if !check.Enrolled {
		return fmt.Errorf("student %s is not on the enrollment list", studentID)
	}
	if check.Completed {
		fmt.Println("\nRegistration already completed.")
		if check.User != nil {
			fmt.Printf("  Student ID: %s\n  Name:       %s\n", check.User.StudentID, check.User.Name)
		}
		return errAlreadyCompleted
	}
	if check.Username != "" {
		fmt.Printf("Pre-assigned account: %s / %s\n", check.Username, check.InitialPassword)
	}

	name, err := c.promptRequired("Full name")
	if err != nil {
		return err
	}

	var verify struct {
		Success bool   `json:"success"`
		Name    string `json:"name"`
	}
	if err := c.post(ctx, "/api/registration/verify", map[string]string{
		"studentId": studentID,
		"name":      name,
	}, &verify); err != nil {
		return err
	}

	return c.ctrl.SetIdentity(ctx, wizard.Identity{StudentID: studentID, Name: name})
}

func (c *cli) stepBasicInfo(ctx context.Context) error {
	fmt.Println("\n-- Step 2/5: Basic Info --")

	var b models.BasicInfo
	var err error
	if b.Year, err = c.promptRequired("Entry year"); err != nil {
		return err
	}
	if b.Gender, err = c.promptRequired("Gender"); err != nil {
		return err
	}
	if b.College, err = c.promptRequired("College"); err != nil {
		return err
	}
	if b.Major, err = c.promptRequired("Major"); err != nil {
		return err
	}
	if b.TechGroup, err = c.promptRequired("Tech group"); err != nil {
		return err
	}
	return c.ctrl.SetBasicInfo(ctx, b)
}

func (c *cli) stepContact(ctx context.Context) error {
	fmt.Println("\n-- Step 3/5: Contact --")

	var ct models.Contact
	var err error
	if ct.Phone, err = c.promptRequired("Phone"); err != nil {
		return err
	}
	if ct.Email, err = c.promptRequired("Email"); err != nil {
		return err
	}
	if ct.QQ, err = c.prompt("QQ (optional)"); err != nil {
		return err
	}
	return c.ctrl.SetContact(ctx, ct)
}

func (c *cli) stepPersonal(ctx context.Context) error {
	fmt.Println("\n-- Step 4/5: Personal Info --")

	var p models.PersonalInfo
	var err error
	if p.IDCard, err = c.promptRequired("ID card number"); err != nil {
		return err
	}
	if p.Birthday, err = c.promptRequired("Birthday (YYYY-MM-DD)"); err != nil {
		return err
	}
	if p.Hometown, err = c.promptRequired("Hometown"); err != nil {
		return err
	}
	if p.CurrentResidence, err = c.prompt("Current residence (optional)"); err != nil {
		return err
	}
	if p.Ethnicity, err = c.promptRequired("Ethnicity"); err != nil {
		return err
	}
	if p.DietaryRestrictions, err = c.prompt("Dietary restrictions (optional)"); err != nil {
		return err
	}
	if p.HighSchool, err = c.promptRequired("High school"); err != nil {
		return err
	}
	return c.ctrl.SetPersonal(ctx, p)
}

func (c *cli) stepAccount(ctx context.Context) error {
	fmt.Println("\n-- Step 5/5: Account --")

	var a wizard.Account
	var err error
	if a.Username, err = c.promptRequired("Username"); err != nil {
		return err
	}
	for {
		if a.Password, err = c.promptRequired("Password (min 8 chars)"); err != nil {
			return err
		}
		if len(a.Password) >= 8 {
			break
		}
		fmt.Println("  password must be at least 8 characters")
	}
	return c.ctrl.SetAccount(ctx, a)
}

func (c *cli) submit(ctx context.Context) error {
	state := c.ctrl.State()
	if !state.Complete() {
		return fmt.Errorf("wizard incomplete, stopped at %s", state.FirstIncompleteStep().String())
	}

	payload := map[string]interface{}{
		"studentId":    state.Identity.StudentID,
		"name":         state.Identity.Name,
		"basicInfo":    state.BasicInfo,
		"contact":      state.Contact,
		"personalInfo": state.Personal,
		"account":      state.Account,
	}

	var resp struct {
		Success bool `json:"success"`
		User    *struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		PasswordSet bool `json:"passwordSet"`
	}
	if err := c.post(ctx, "/api/registration/", payload, &resp); err != nil {
		return err
	}

	fmt.Println("\nRegistration complete.")
	if resp.User != nil {
		fmt.Printf("Account: %s (id %d)\n", resp.User.Username, resp.User.ID)
		if !resp.PasswordSet {
			fmt.Println("Note: the password could not be set, use the password reset flow.")
		}
	}

	return c.ctrl.Complete(ctx)
}

// ==========================
// HTTP helpers
// ==========================

func (c *cli) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *cli) post(ctx context.Context, path string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *cli) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error   string            `json:"error"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Message != "" {
			for field, msg := range errBody.Details {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			return fmt.Errorf("%s (%s)", errBody.Message, errBody.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
