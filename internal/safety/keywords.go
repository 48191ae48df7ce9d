// Package safety classifies entity names and content text into risk tiers
// and decides auto-approve / review / block for content candidates.
package safety

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Lists holds the curated keyword tiers and allowlists. Loaded once at
// startup and never mutated at runtime.
type Lists struct {
	// Blocked terms: any hit is a terminal block (explicit content,
	// minors, private leaks, violence, illegal activity).
	Blocked []string `yaml:"blocked"`

	// Review terms: gossip and controversy vocabulary that forces manual
	// review for unverified entities.
	Review []string `yaml:"review"`

	// SafeContext terms: positive editorial contexts that contribute
	// toward auto-approval.
	SafeContext []string `yaml:"safe_context"`

	// MinorIndicators blocks entity names that suggest a minor.
	MinorIndicators []string `yaml:"minor_indicators"`

	// PoliticalRoles blocks entity names that suggest a political figure.
	PoliticalRoles []string `yaml:"political_roles"`

	// VerifiedEntities is the curated allowlist of known public figures.
	// Matching is exact/substring and does not scale to spelling variants.
	VerifiedEntities []string `yaml:"verified_entities"`

	// CuratedHandles maps a normalized entity name to platform handles
	// confirmed by editors (platform -> handle).
	CuratedHandles map[string]map[string]string `yaml:"curated_handles"`
}

// DefaultLists returns the compiled-in curated lists, used when no
// keywords file is configured.
func DefaultLists() Lists {
	return Lists{
		Blocked: []string{
			"nude", "naked", "leaked", "leak", "mms", "porn", "sex tape",
			"xxx", "obscene", "hidden camera", "private video", "rape",
			"assault", "murder", "violence", "drugs", "illegal", "underage",
		},
		Review: []string{
			"gossip", "rumor", "rumour", "affair", "dating", "boyfriend",
			"girlfriend", "breakup", "divorce", "controversy", "scandal",
			"feud", "slam", "troll", "viral claim",
		},
		SafeContext: []string{
			"photoshoot", "photo shoot", "fashion", "event", "awards",
			"movie", "trailer", "song", "dance", "fitness", "workout",
			"traditional", "saree", "lehenga", "interview", "promotion",
			"wedding", "festival", "beach", "vacation",
		},
		MinorIndicators: []string{
			"kid", "child", "minor", "teen", "underage", "junior", "baby",
			"school",
		},
		PoliticalRoles: []string{
			"mp", "mla", "minister", "politician", "mayor", "sarpanch",
			"chief minister", "party president",
		},
		VerifiedEntities: []string{
			"samantha", "samantha ruth prabhu", "rashmika mandanna",
			"pooja hegde", "anasuya bharadwaj", "sreemukhi", "kajal aggarwal",
			"keerthy suresh", "nabha natesh", "rakul preet singh",
		},
		CuratedHandles: map[string]map[string]string{
			"samantha ruth prabhu": {
				"instagram": "samantharuthprabhuoffl",
				"twitter":   "Samanthaprabhu2",
			},
			"rashmika mandanna": {
				"instagram": "rashmika_mandanna",
				"twitter":   "iamRashmika",
			},
			"sreemukhi": {
				"instagram": "sreemukhi",
			},
		},
	}
}

// LoadLists reads curated lists from a YAML file. Empty sections fall back
// to the compiled-in defaults section by section, so a partial file only
// overrides what it names.
func LoadLists(path string) (Lists, error) {
	defaults := DefaultLists()

	data, err := os.ReadFile(path)
	if err != nil {
		return Lists{}, eris.Wrapf(err, "safety: read keywords file %s", path)
	}

	var loaded Lists
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Lists{}, eris.Wrapf(err, "safety: parse keywords file %s", path)
	}

	if len(loaded.Blocked) == 0 {
		loaded.Blocked = defaults.Blocked
	}
	if len(loaded.Review) == 0 {
		loaded.Review = defaults.Review
	}
	if len(loaded.SafeContext) == 0 {
		loaded.SafeContext = defaults.SafeContext
	}
	if len(loaded.MinorIndicators) == 0 {
		loaded.MinorIndicators = defaults.MinorIndicators
	}
	if len(loaded.PoliticalRoles) == 0 {
		loaded.PoliticalRoles = defaults.PoliticalRoles
	}
	if len(loaded.VerifiedEntities) == 0 {
		loaded.VerifiedEntities = defaults.VerifiedEntities
	}
	if len(loaded.CuratedHandles) == 0 {
		loaded.CuratedHandles = defaults.CuratedHandles
	}

	return loaded, nil
}

// containsTerm reports whether text contains the keyword on word
// boundaries. Multi-word keywords match as a phrase; single words must
// appear as a whole token so that "mp" does not match "glamp".
func containsTerm(text, keyword string) bool {
	text = " " + nonWordToSpace(strings.ToLower(text)) + " "
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	return strings.Contains(text, " "+keyword+" ")
}

// nonWordToSpace replaces punctuation with spaces so boundary matching
// works on captions like "scandal!" or "mms,".
func nonWordToSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127 {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// firstMatch returns the first keyword from terms found in text, or "".
func firstMatch(text string, terms []string) string {
	for _, term := range terms {
		if containsTerm(text, term) {
			return term
		}
	}
	return ""
}

// allMatches returns every keyword from terms found in text.
func allMatches(text string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		if containsTerm(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}
