// Package permissions decides whether screenshots may be written to shared storage.
package permissions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mobile-next/nativescreenshot/utils"
	"github.com/zalando/go-keyring"
)

// Status enumerates the coarse states of the write grant.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusGranted Status = "granted"
	StatusDenied  Status = "denied"
	// StatusPrompt means a request was issued and is waiting for the user.
	StatusPrompt Status = "prompt"
)

// ParseStatus maps stored values onto a Status, treating anything unrecognised as unknown.
func ParseStatus(value string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusGranted:
		return StatusGranted
	case StatusDenied:
		return StatusDenied
	case StatusPrompt:
		return StatusPrompt
	default:
		return StatusUnknown
	}
}

// GrantStore persists the user's decision about write access.
type GrantStore interface {
	Get() (Status, error)
	Set(Status) error
	Delete() error
}

const KeyringService = "nativescreenshot"

// KeyringStore keeps the grant in the OS keychain, one entry per application.
type KeyringStore struct {
	Service string
	User    string
}

func NewKeyringStore(appName string) *KeyringStore {
	return &KeyringStore{Service: KeyringService, User: appName}
}

func (k *KeyringStore) Get() (Status, error) {
	value, err := keyring.Get(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return StatusUnknown, nil
	}
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to read permission grant: %w", err)
	}
	return ParseStatus(value), nil
}

func (k *KeyringStore) Set(status Status) error {
	if err := keyring.Set(k.Service, k.User, string(status)); err != nil {
		return fmt.Errorf("failed to store permission grant: %w", err)
	}
	return nil
}

func (k *KeyringStore) Delete() error {
	err := keyring.Delete(k.Service, k.User)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete permission grant: %w", err)
	}
	return nil
}

// Checker answers the bridge's permission questions for a target directory.
// When RequireGrant is set the stored grant must be StatusGranted before the
// directory is even looked at.
type Checker struct {
	Dir          string
	Grants       GrantStore
	RequireGrant bool
}

func (c *Checker) HasWritePermission() bool {
	if c.RequireGrant {
		if c.Grants == nil {
			return false
		}

		status, err := c.Grants.Get()
		if err != nil {
			utils.Verbose("permission check failed: %v", err)
			return false
		}
		if status != StatusGranted {
			utils.Verbose("write permission is %s", status)
			return false
		}
	}

	dir, err := nearestExistingDir(c.Dir)
	if err != nil {
		utils.Verbose("cannot resolve %s: %v", c.Dir, err)
		return false
	}

	if err := checkWritable(dir); err != nil {
		utils.Verbose("%s is not writable: %v", dir, err)
		return false
	}

	return true
}

// RequestWritePermission records a pending request and tells the user how to answer
// it. It returns immediately.
func (c *Checker) RequestWritePermission() {
	if !c.RequireGrant || c.Grants == nil {
		utils.Info("Write access to %s is required to save screenshots", c.Dir)
		return
	}

	status, err := c.Grants.Get()
	if err == nil && status == StatusDenied {
		utils.Info("Write permission was denied. Run 'nativescreenshot permission grant' to allow saving screenshots")
		return
	}

	if err := c.Grants.Set(StatusPrompt); err != nil {
		utils.Error("Error requesting write permission: %v", err)
		return
	}

	utils.Info("Write permission requested. Run 'nativescreenshot permission grant' to allow saving screenshots")
}

// nearestExistingDir walks up from dir until it finds something that exists, since
// the per-app directory is only created when the first screenshot is written.
func nearestExistingDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		info, err := os.Stat(abs)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", abs)
			}
			return abs, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no existing parent for %s", dir)
		}
		abs = parent
	}
}
