package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Errors is a list of errors that itself satisfies the error interface, so
// that we can report every missing configuration variable at once instead of
// failing on the first one.
type Errors []error

func (e Errors) Error() string {
	messages := []string{}
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, ", ")
}

// RequireEnv reads an environment variable, appending an error to errs if it
// is unset.
func RequireEnv(varName string, errs *Errors) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		*errs = append(*errs, fmt.Errorf("environment variable %s not set", varName))
	}
	return envVar
}

// ValidPort transforms a port string into the ":port" form expected by
// net/http, erroring if the port is not numeric.
func ValidPort(port string) (string, error) {
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("given portstring %s is invalid", port)
	}
	return fmt.Sprintf(":%s", port), nil
}
