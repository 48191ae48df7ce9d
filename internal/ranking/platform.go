package ranking

// platformPriority orders platforms for primary-platform selection. Lower
// is higher priority. Platforms absent from the table never win selection.
var platformPriority = map[string]int{
	"instagram": 0,
	"tiktok":    1,
	"youtube":   2,
	"twitter":   3,
	"facebook":  4,
}

// embedCapable lists platforms with a public, ToS-compliant embedding
// mechanism. Platforms without one (snapchat, imdb, wikipedia, official
// sites) are excluded from the embed-safety bonus and from primary-platform
// selection. This is policy, not runtime probing.
var embedCapable = map[string]bool{
	"instagram": true,
	"tiktok":    true,
	"youtube":   true,
	"twitter":   true,
	"facebook":  true,
}

// EmbedCapable reports whether a platform offers public embedding.
func EmbedCapable(platform string) bool {
	return embedCapable[platform]
}

// PrimaryPlatform picks the highest-priority embed-capable platform from
// the given set. Returns "" when none qualifies.
func PrimaryPlatform(platforms []string) string {
	best := ""
	bestRank := len(platformPriority)
	for _, p := range platforms {
		if !embedCapable[p] {
			continue
		}
		rank, ok := platformPriority[p]
		if !ok {
			continue
		}
		if rank < bestRank {
			best = p
			bestRank = rank
		}
	}
	return best
}
