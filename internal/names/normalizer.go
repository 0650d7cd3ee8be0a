// Package names canonicalizes team name strings so games and odds quotes
// from different upstream sources can be matched to each other.
package names

import "strings"

// Normalizer turns raw team names into canonical tokens and answers
// same-team and watch-list questions. Construct once, pass explicitly.
type Normalizer struct {
	mascots    map[string]struct{}
	aliases    map[string]string
	collisions map[string]struct{}
	watchList  map[string]struct{}
}

// Config holds the data tables a Normalizer is built from. Zero-value
// slices fall back to the defaults in teamdata.go; WatchList has no
// default and comes from deployment configuration.
type Config struct {
	Mascots          []string
	Aliases          map[string]string
	Collisions       []string
	WatchListedTeams []string
}

// NewNormalizer builds a Normalizer from the given tables.
func NewNormalizer(cfg Config) *Normalizer {
	if cfg.Mascots == nil {
		cfg.Mascots = DefaultMascots
	}
	if cfg.Aliases == nil {
		cfg.Aliases = DefaultAliases
	}
	if cfg.Collisions == nil {
		cfg.Collisions = DefaultCollisions
	}

	n := &Normalizer{
		mascots:    make(map[string]struct{}, len(cfg.Mascots)),
		aliases:    make(map[string]string, len(cfg.Aliases)),
		collisions: make(map[string]struct{}, len(cfg.Collisions)),
		watchList:  make(map[string]struct{}, len(cfg.WatchListedTeams)),
	}
	for _, m := range cfg.Mascots {
		n.mascots[strings.ToLower(m)] = struct{}{}
	}
	for k, v := range cfg.Aliases {
		n.aliases[strings.ToLower(k)] = strings.ToLower(v)
	}
	for _, c := range cfg.Collisions {
		n.collisions[strings.ToLower(c)] = struct{}{}
	}
	// Watch list entries pass through normalization so aliases resolve to
	// the same canonical token the matcher will see.
	for _, w := range cfg.WatchListedTeams {
		n.watchList[n.Normalize(w)] = struct{}{}
	}
	return n
}

// Normalize returns the canonical token for a raw team name: lowercased,
// whitespace-collapsed, mascot suffix words stripped, aliases resolved.
// Normalize is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	if canon, ok := n.aliases[s]; ok {
		return canon
	}

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, isMascot := n.mascots[w]; !isMascot {
			kept = append(kept, w)
		}
	}
	// A name that is nothing but mascot words stays as-is rather than
	// collapsing to the empty token.
	if len(kept) > 0 {
		s = strings.Join(kept, " ")
	}

	if canon, ok := n.aliases[s]; ok {
		return canon
	}
	return s
}

// SameTeam reports whether two raw names refer to the same team. Equal
// canonical tokens always match. Otherwise a controlled fuzzy rule
// applies: one token may be a prefix of the other's first word, which
// catches partial source naming ("Pitt" vs "Pittsburgh Panthers").
// Tokens on the collision list only ever match exactly.
func (n *Normalizer) SameTeam(a, b string) bool {
	ca := n.Normalize(a)
	cb := n.Normalize(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}

	// Known-collision tokens ("Michigan" vs "Central Michigan") must not
	// take the fuzzy path.
	if _, ok := n.collisions[ca]; ok {
		return false
	}
	if _, ok := n.collisions[cb]; ok {
		return false
	}

	return prefixOfFirstWord(ca, cb) || prefixOfFirstWord(cb, ca)
}

// prefixOfFirstWord reports whether token is a prefix of the first word
// of other (minimum three characters, to keep the rule controlled).
func prefixOfFirstWord(token, other string) bool {
	if len(token) < 3 || strings.ContainsRune(token, ' ') {
		return false
	}
	first, _, _ := strings.Cut(other, " ")
	return strings.HasPrefix(first, token)
}

// IsFavoriteTeam reports whether the raw name resolves, by exact
// canonical match, to a team on the configured watch list.
func (n *Normalizer) IsFavoriteTeam(raw string) bool {
	_, ok := n.watchList[n.Normalize(raw)]
	return ok
}

// WatchListSize returns how many canonical teams are on the watch list.
func (n *Normalizer) WatchListSize() int {
	return len(n.watchList)
}
