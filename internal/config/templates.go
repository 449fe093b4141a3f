package config

import (
	"fmt"
	"os"
)

// Template returns a documented zusictl.toml carrying the defaults.
func Template() string {
	return clientTemplate
}

// WriteTemplate writes Template to path. An existing file is kept unless
// overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(clientTemplate), 0o600)
}

const clientTemplate = `# Zusi TCP server (default port 1436).
address = "127.0.0.1:1436"

# Sent in HELLO.
client_name = "zusictl"
client_version = "dev"

# NEEDED_DATA selection. Ids are Zusi cab display / program data ids.
cab_displays = [0x0001, 0x001B]
program_data = []
cab_operation = false

connect_timeout = "5s"
handshake_timeout = "5s"
# "0s" waits for data pushes without a deadline.
read_timeout = "0s"
write_timeout = "5s"

# 0 retries until interrupted.
max_connect_attempts = 1

# Serve /metrics and /healthz here when set, e.g. "127.0.0.1:9464".
metrics_addr = ""
`
