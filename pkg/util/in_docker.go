package util

import (
	"errors"
	"fmt"
	"os"
)

// IsRunningInDocker reports whether the process runs inside a docker container
func IsRunningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// RequireMounted fails when running in docker and path doesn't exist. Data
// written to an unmounted path would be lost with the container.
func RequireMounted(path, what string) error {
	if !IsRunningInDocker() {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s not mounted, please use docker volumes to mount it to /app/%s", what, path)
	}

	return nil
}
