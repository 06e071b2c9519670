package config

import (
	"sort"
	"strings"
)

type Cors struct {
	origins AllowedOrigins
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return c.origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PATCH, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type"
}
