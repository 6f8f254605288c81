package region

import (
	"fmt"
	"strings"
)

// Code identifies an administrative division by its two-digit province code.
type Code string

// Group names for the fixed macro-region partition.
const (
	North     = "north"
	Northeast = "northeast"
	East      = "east"
	Central   = "central"
	Southwest = "southwest"
	Northwest = "northwest"
)

// Group is a named set of province codes that share one rendering layer set.
type Group struct {
	Name  string
	Codes []Code
}

// groups is the fixed partition of province codes into macro-regions.
// Every code belongs to exactly one group; the slice order is the stable
// output order for expansion and union results.
var groups = []Group{
	{Name: North, Codes: []Code{"12", "13", "14", "15"}},
	{Name: Northeast, Codes: []Code{"21", "22", "23"}},
	{Name: East, Codes: []Code{"31", "32", "33", "34", "35", "36", "37"}},
	{Name: Central, Codes: []Code{"41", "42", "43", "44", "45", "46"}},
	{Name: Southwest, Codes: []Code{"50", "51", "52", "53", "54"}},
	{Name: Northwest, Codes: []Code{"62", "63", "64", "65"}},
}

var codeToGroup = func() map[Code]string {
	m := make(map[Code]string)
	for _, g := range groups {
		for _, c := range g.Codes {
			m[c] = g.Name
		}
	}
	return m
}()

// GroupOf returns the name of the group the code belongs to, or false for
// codes outside the partition.
func GroupOf(c Code) (string, bool) {
	name, ok := codeToGroup[c]
	return name, ok
}

// GroupCodes returns the codes of the named group, or nil for an unknown
// name. The returned slice must not be mutated.
func GroupCodes(name string) []Code {
	for _, g := range groups {
		if g.Name == name {
			return g.Codes
		}
	}
	return nil
}

// AllCodes returns every configured province code in stable group order.
func AllCodes() []Code {
	var out []Code
	for _, g := range groups {
		out = append(out, g.Codes...)
	}
	return out
}

// ExpandGroups maps each code to its group and returns the union of all
// codes of every matched group, in stable group order. Codes outside the
// partition are dropped. The result is always a union of whole groups, so
// adjacent provinces sharing a rendering group are never split apart.
func ExpandGroups(codes []Code) []Code {
	matched := make(map[string]bool)
	for _, c := range codes {
		if name, ok := codeToGroup[c]; ok {
			matched[name] = true
		}
	}

	var out []Code
	for _, g := range groups {
		if matched[g.Name] {
			out = append(out, g.Codes...)
		}
	}
	return out
}

// GroupSummary returns a per-group code count, e.g. for startup logging.
func GroupSummary() string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s: %d", g.Name, len(g.Codes)))
	}
	return strings.Join(parts, ", ")
}

// Join joins codes with the given separator.
func Join(codes []Code, sep string) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, sep)
}
