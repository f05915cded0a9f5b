// Package entity resolves restaurant mentions in a query to the hotel(s)
// that actually operate them, so a question about a venue shared (or
// ambiguous) across properties can be redirected or clarified before
// retrieval ever runs.
package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"hotel-faq/internal/hotel"
)

// Action is the outcome of resolving a restaurant mention.
type Action string

const (
	// ActionNone means no restaurant alias was found in the query.
	ActionNone Action = "none"
	// ActionProceed means the mentioned restaurant belongs to the
	// currently active hotel; the turn proceeds unmodified.
	ActionProceed Action = "proceed"
	// ActionRedirect means the restaurant belongs to exactly one hotel,
	// different from the one currently in context; the caller should
	// switch context to that hotel and inform the user.
	ActionRedirect Action = "redirect"
	// ActionClarify means the restaurant name is shared by two or more
	// hotels; the caller must ask which one before proceeding.
	ActionClarify Action = "clarify"
)

// Resolution is the result of resolving a restaurant mention in a query.
type Resolution struct {
	Action          Action
	RestaurantName  string // cleaned, display-ready name
	TargetHotel     string // set for ActionProceed and ActionRedirect
	Message         string // Korean, user-facing redirect/clarify message
	ClarifyOptions  []string
}

var bracketSuffix = regexp.MustCompile(`\([^)]*\)\s*$`)

// cleanName strips a trailing "(...)" qualifier used in the alias index to
// disambiguate identically-named venues, e.g. "아리아(부산)" -> "아리아".
func cleanName(name string) string {
	return strings.TrimSpace(bracketSuffix.ReplaceAllString(name, ""))
}

// Resolver resolves restaurant-name mentions against hotel.RestaurantAliasIndex.
type Resolver struct {
	aliasIndex   map[string][]hotel.RestaurantEntry
	sortedAliases []string
}

// NewResolver builds a Resolver over the given alias index, pre-sorting
// aliases longest-first so a more specific alias always wins over a
// substring of it (e.g. a two-word alias over a one-word alias contained
// within it).
func NewResolver(aliasIndex map[string][]hotel.RestaurantEntry) *Resolver {
	aliases := make([]string, 0, len(aliasIndex))
	for a := range aliasIndex {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool {
		return len([]rune(aliases[i])) > len([]rune(aliases[j]))
	})
	return &Resolver{aliasIndex: aliasIndex, sortedAliases: aliases}
}

// NewDefaultResolver builds a Resolver over the built-in alias index.
func NewDefaultResolver() *Resolver {
	return NewResolver(hotel.RestaurantAliasIndex)
}

// Resolve looks for the longest matching restaurant alias in query and
// decides whether the turn should proceed, redirect, or clarify, given the
// hotel currently active in the conversation (empty if none yet).
func (r *Resolver) Resolve(query, currentHotel string) Resolution {
	lowerQuery := strings.ToLower(query)

	for _, alias := range r.sortedAliases {
		if !strings.Contains(lowerQuery, strings.ToLower(alias)) {
			continue
		}
		entries := r.aliasIndex[alias]
		if len(entries) == 0 {
			continue
		}

		display := cleanName(entries[0].Restaurant)

		if currentHotel != "" {
			for _, e := range entries {
				if e.HotelID == currentHotel {
					return Resolution{
						Action:         ActionProceed,
						RestaurantName: display,
						TargetHotel:    currentHotel,
					}
				}
			}
		}

		uniqueHotels := uniqueHotelIDs(entries)
		if len(uniqueHotels) == 1 {
			target := uniqueHotels[0]
			targetName := hotel.HotelInfo[target].Name
			return Resolution{
				Action:         ActionRedirect,
				RestaurantName: display,
				TargetHotel:    target,
				Message:        fmt.Sprintf("%s은(는) %s에 위치한 레스토랑입니다.", display, targetName),
			}
		}

		names := make([]string, 0, len(uniqueHotels))
		for _, h := range uniqueHotels {
			names = append(names, hotel.HotelInfo[h].Name)
		}
		hotelList := strings.Join(names, ", ")
		return Resolution{
			Action:         ActionClarify,
			RestaurantName: display,
			Message: fmt.Sprintf("%s은(는) %s에 있습니다. 어느 호텔의 %s을(를) 안내해 드릴까요?",
				display, hotelList, display),
			ClarifyOptions: names,
		}
	}

	return Resolution{Action: ActionNone}
}

// uniqueHotelIDs returns the distinct hotel IDs among entries, in the
// order they first appear.
func uniqueHotelIDs(entries []hotel.RestaurantEntry) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.HotelID] {
			seen[e.HotelID] = true
			out = append(out, e.HotelID)
		}
	}
	return out
}
