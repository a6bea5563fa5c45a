package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

const maxUDPPayload = 65507

var ginModes = []string{"release", "debug", "test"}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" && c.Store.Path == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	if err := validPort(c.HTTP.Port); err != nil {
		errs = errs.Append("http.port", err)
	}
	if !slices.Contains(ginModes, c.HTTP.Mode) {
		errs = errs.Append("http.mode", fmt.Errorf("must be one of %v, got %q", ginModes, c.HTTP.Mode))
	}
	if c.HTTP.MaxBodyBytes < 1 {
		errs = errs.Append("http.max_body_bytes", fmt.Errorf("must be at least 1"))
	}
	if c.HTTP.ReadTimeout < 0 {
		errs = errs.Append("http.read_timeout", fmt.Errorf("cannot be negative"))
	}

	if err := validPort(c.Relay.Port); err != nil {
		errs = errs.Append("relay.port", err)
	}
	if !isLoopback(c.Relay.Host) {
		errs = errs.Append("relay.host", fmt.Errorf("%q is not a loopback address", c.Relay.Host))
	}
	if c.Relay.SendTimeout < 0 {
		errs = errs.Append("relay.send_timeout", fmt.Errorf("cannot be negative"))
	}
	if c.Relay.MaxDatagram < 1 || c.Relay.MaxDatagram > maxUDPPayload {
		errs = errs.Append("relay.max_datagram", fmt.Errorf("must be between 1 and %d", maxUDPPayload))
	}

	if c.Store.Driver != DriverJSONFile && c.Store.Driver != DriverBadger {
		errs = errs.Append("store.driver", fmt.Errorf("must be %q or %q, got %q", DriverJSONFile, DriverBadger, c.Store.Driver))
	}

	for i, pattern := range c.StaticDeny {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("static_deny[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	return errs.ToError()
}

// ValidateDeep runs Validate and additionally checks file system access for
// the config file, the data directory and the site directory.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config_file", fmt.Errorf("cannot access %s: %v", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("data_dir", fmt.Errorf("cannot access %s: %v", c.DataDir, err))
		}
	}

	if c.WebDir != "" {
		for _, sub := range []string{"templates", "static"} {
			dir := filepath.Join(c.WebDir, sub)
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				errs = errs.Append("web_dir", fmt.Errorf("%s is not a directory", dir))
			}
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal issues with the configuration.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.StaticDeny) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Static",
			Item:     "static_deny",
			Message:  "no deny patterns; hidden files under static/ will be served",
		})
	}

	if c.WebDir != "" {
		for _, page := range []string{"index.html", "message.html", "error.html"} {
			path := filepath.Join(c.WebDir, "templates", page)
			if _, err := os.Stat(path); err != nil {
				warnings = append(warnings, ValidationWarning{
					Category: "Site",
					Item:     page,
					Message:  fmt.Sprintf("%s not found; requests for it get a 404", path),
				})
			}
		}
	}

	if c.Relay.MaxDatagram < 1024 {
		warnings = append(warnings, ValidationWarning{
			Category: "Relay",
			Item:     "max_datagram",
			Message:  fmt.Sprintf("%d bytes leaves little room for message text", c.Relay.MaxDatagram),
		})
	}

	return warnings
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", port)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
