package inventory

import "strings"

// Roles maps a logical unit role ("worker") to the prototype names that fill it.
type Roles map[string][]string

// RoleOf returns the role a prototype name belongs to (case-insensitive).
func (r Roles) RoleOf(name string) (string, bool) {
	for role, names := range r {
		for _, n := range names {
			if strings.EqualFold(n, name) {
				return role, true
			}
		}
	}
	return "", false
}
