package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/marksync/internal/core/config"
)

// ConfigCheck verifies that the configuration file loads and validates.
type ConfigCheck struct {
	path string
}

func NewConfigCheck(path string) *ConfigCheck {
	return &ConfigCheck{path: path}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.path == "" {
		result.Items = append(result.Items, CheckItem{Label: "Config file", Status: StatusPass, Detail: "defaults"})
		return result
	}

	info, err := os.Stat(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusPass,
			Detail: fmt.Sprintf("%s not found, using defaults", c.path),
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "Config file", Status: StatusFail, Detail: err.Error()})
		return result
	case info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s is a directory, not a file", c.path),
		})
		return result
	}

	_, err = config.Load(c.path)
	if err == nil {
		result.Items = append(result.Items, CheckItem{Label: "Config file", Status: StatusPass, Detail: c.path})
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.Items = append(result.Items, CheckItem{Label: "Config file", Status: StatusFail, Detail: err.Error()})
		return result
	}
	for _, fe := range fieldErrs {
		result.Items = append(result.Items, CheckItem{Label: fe.Field, Status: StatusFail, Detail: fe.Err.Error()})
	}
	return result
}
