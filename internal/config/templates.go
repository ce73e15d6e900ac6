package config

import (
	"fmt"
	"os"
)

func Template() string {
	return sfctlTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(sfctlTemplate), 0o600)
}

const sfctlTemplate = `log_level = "info"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_envelope_bytes = 8388608

# Application variant names to classify in addition to the built-ins.
extra_types = []
`
