package hotel

import (
	"encoding/json"
	"os"
)

// KnownNames is the proper-noun whitelist consulted by the grounding gate
// and the answer verifier's proper-noun hallucination check. It is loaded
// once at startup from known_names.json.
type KnownNames struct {
	Brands      []string            `json:"brands"`
	Restaurants map[string][]string `json:"restaurants"` // hotel key -> restaurant names
	Facilities  []string            `json:"facilities"`
	RoomTypes   []string            `json:"room_types"`
}

// ForbiddenPatterns holds regex sources loaded from forbidden_patterns.json;
// matches are scrubbed from any final answer by policyFilter's safety net.
type ForbiddenPatterns struct {
	Patterns []string `json:"patterns"`
}

// LoadKnownNames reads known_names.json from path. A missing file yields an
// empty (but non-nil) KnownNames rather than an error, since the whitelist
// is an enrichment, not a hard dependency.
func LoadKnownNames(path string) (*KnownNames, error) {
	kn := &KnownNames{Restaurants: map[string][]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kn, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, kn); err != nil {
		return nil, err
	}
	return kn, nil
}

// LoadForbiddenPatterns reads forbidden_patterns.json from path.
func LoadForbiddenPatterns(path string) (*ForbiddenPatterns, error) {
	fp := &ForbiddenPatterns{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fp, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// Contains reports whether name (Korean or English form) is present anywhere
// in the whitelist.
func (k *KnownNames) Contains(name string) bool {
	if name == "" {
		return false
	}
	for _, b := range k.Brands {
		if b == name {
			return true
		}
	}
	for _, names := range k.Restaurants {
		for _, n := range names {
			if n == name {
				return true
			}
		}
	}
	for _, f := range k.Facilities {
		if f == name {
			return true
		}
	}
	for _, r := range k.RoomTypes {
		if r == name {
			return true
		}
	}
	return false
}
