package config

import (
	"fmt"
	"strings"
)

const envDev = "DEV"

type EnvVars struct {
	v values
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.Port
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.AppName
}

func (e EnvVars) GetEnv() string {
	return e.v.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.LogLevel
}

// IsDev reports whether dev-only tooling (route logging, state inspection) should be enabled
func (e EnvVars) IsDev() bool {
	return e.v.Env == envDev
}
