package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// RouteTable lists the path prefixes the route guard acts on.
type RouteTable struct {
	Matcher     []string `yaml:"matcher"`
	Protected   []string `yaml:"protected"`
	AuthEntry   []string `yaml:"auth_entry"`
	Public      []string `yaml:"public"`
	LoginPath   string   `yaml:"login_path"`
	HomePath    string   `yaml:"home_path"`
	ReturnParam string   `yaml:"return_param"`
}

// LoadRoutes parses the embedded route table.
func LoadRoutes() (*RouteTable, error) {
	return ParseRoutes(defaultRoutes)
}

// ParseRoutes parses a YAML route table and checks it is usable.
func ParseRoutes(data []byte) (*RouteTable, error) {
	var rt RouteTable
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return nil, fmt.Errorf("unmarshal route table: %w", err)
	}
	if rt.LoginPath == "" || rt.HomePath == "" {
		return nil, fmt.Errorf("route table: login_path and home_path are required")
	}
	if rt.ReturnParam == "" {
		rt.ReturnParam = "redirectedFrom"
	}
	for _, group := range [][]string{rt.Matcher, rt.Protected, rt.AuthEntry, rt.Public} {
		for i, p := range group {
			if !strings.HasPrefix(p, "/") {
				return nil, fmt.Errorf("route table: %q must start with /", p)
			}
			group[i] = strings.TrimRight(p, "/")
		}
	}
	return &rt, nil
}

// HasPrefix reports whether path equals prefix or is below it.
// "/editor" matches "/editor" and "/editor/x" but not "/editorial".
func HasPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// MatchAny reports whether path falls under any of the prefixes.
func MatchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if HasPrefix(path, p) {
			return true
		}
	}
	return false
}
