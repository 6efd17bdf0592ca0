package naming

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Defaults match the published episode plan.
const (
	DefaultSeasons           = 17
	DefaultEpisodesPerSeason = 52
	DefaultPrefix            = "P0D"
	DefaultTheme             = "AXIS"
)

// symbolSets groups the thematic vocabulary code names draw from.
var symbolSets = map[string][]string{
	"encryption": {
		"CIPHER", "ENCRYPT", "HASH", "TOKEN", "KEY", "SALT",
		"AES", "RSA", "TLS", "SSL", "PKI", "CERT",
	},
	"security": {
		"FIREWALL", "SHIELD", "GUARD", "SENTINEL", "BASTION", "FORTRESS",
		"AEGIS", "BARRIER", "DEFENSE", "PATROL", "WATCH", "VAULT",
	},
	"attack": {
		"BREACH", "EXPLOIT", "PAYLOAD", "VECTOR", "MALWARE", "PHISH",
		"TROJAN", "WORM", "ROOTKIT", "BACKDOOR", "INJECT", "OVERFLOW",
	},
	"network": {
		"PACKET", "ROUTER", "GATEWAY", "PROXY", "TUNNEL", "BRIDGE",
		"NODE", "MESH", "FABRIC", "LINK", "HUB", "SWITCH",
	},
	"data": {
		"STREAM", "BUFFER", "CACHE", "QUEUE", "STACK", "HEAP",
		"BLOCK", "CHUNK", "SHARD", "FRAME", "SEGMENT", "BYTE",
	},
	"protocol": {
		"HTTP", "TCP", "UDP", "DNS", "DHCP", "FTP",
		"SMTP", "SSH", "SNMP", "ICMP", "BGP", "OSPF",
	},
	"operation": {
		"SCAN", "PROBE", "TRACE", "QUERY", "FETCH", "PUSH",
		"PULL", "MERGE", "FORK", "CLONE", "PATCH", "BUILD",
	},
	"status": {
		"ACTIVE", "IDLE", "READY", "ARMED", "ALERT", "LOCKED",
		"SECURE", "OPEN", "CLOSED", "PENDING", "LIVE", "STANDBY",
	},
}

// CodeName is one generated episode code name.
type CodeName struct {
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	CodeName string `json:"code_name"`
	Symbol   string `json:"symbol"`
}

// Generator produces systematic episode code names.
type Generator struct {
	Prefix            string
	Theme             string
	Seasons           int
	EpisodesPerSeason int
}

// NewGenerator fills zero fields with the published defaults.
func NewGenerator(prefix, theme string, seasons, episodesPerSeason int) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if theme == "" {
		theme = DefaultTheme
	}
	if seasons <= 0 {
		seasons = DefaultSeasons
	}
	if episodesPerSeason <= 0 {
		episodesPerSeason = DefaultEpisodesPerSeason
	}
	return &Generator{Prefix: prefix, Theme: theme, Seasons: seasons, EpisodesPerSeason: episodesPerSeason}
}

// SymbolPool builds the ordered symbol list for the full episode plan. Base
// symbols are deduplicated and sorted; once exhausted they are reused with
// an incrementing numeric suffix so every episode's symbol stays unique.
func (g *Generator) SymbolPool() []string {
	seen := map[string]struct{}{}
	var base []string
	for _, symbols := range symbolSets {
		for _, symbol := range symbols {
			if _, ok := seen[symbol]; ok {
				continue
			}
			seen[symbol] = struct{}{}
			base = append(base, symbol)
		}
	}
	sort.Strings(base)

	total := g.Seasons * g.EpisodesPerSeason
	if total <= len(base) {
		return base[:total]
	}

	pool := make([]string, 0, total)
	for i := 0; i < total; i++ {
		symbol := base[i%len(base)]
		if round := i / len(base); round > 0 {
			symbol = fmt.Sprintf("%s%d", symbol, round)
		}
		pool = append(pool, symbol)
	}
	return pool
}

// Format renders one code name.
func (g *Generator) Format(season, episode int, symbol string) string {
	return fmt.Sprintf("%s-S%02d-E%03d-%s-%s", g.Prefix, season, episode, g.Theme, symbol)
}

// Generate produces code names for the whole episode plan in season-major
// order.
func (g *Generator) Generate() []CodeName {
	return g.assign(g.SymbolPool())
}

// GenerateShuffled permutes the symbol pool with a seeded source before
// assignment, so a given seed always yields the same table.
func (g *Generator) GenerateShuffled(seed int64) []CodeName {
	pool := g.SymbolPool()
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return g.assign(pool)
}

func (g *Generator) assign(pool []string) []CodeName {
	names := make([]CodeName, 0, len(pool))
	index := 0
	for season := 1; season <= g.Seasons; season++ {
		for episode := 1; episode <= g.EpisodesPerSeason; episode++ {
			symbol := pool[index]
			names = append(names, CodeName{
				Season:   season,
				Episode:  episode,
				CodeName: g.Format(season, episode, symbol),
				Symbol:   symbol,
			})
			index++
		}
	}
	return names
}

type artifact struct {
	GeneratedAt   string     `json:"generated_at"`
	Prefix        string     `json:"prefix"`
	Theme         string     `json:"theme"`
	TotalEpisodes int        `json:"total_episodes"`
	Episodes      []CodeName `json:"episodes"`
}

// Save writes the code names as JSON and a human-readable text listing into
// outputDir.
func (g *Generator) Save(names []CodeName, outputDir string, now time.Time) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	payload := artifact{
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Prefix:        g.Prefix,
		Theme:         g.Theme,
		TotalEpisodes: len(names),
		Episodes:      names,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode code names: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "episode-code-names.json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write json artifact: %w", err)
	}

	var b strings.Builder
	rule := strings.Repeat("=", 70)
	b.WriteString("PR-CYBR-P0D Episode Code Names\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Format: %s-S<season>-E<episode>-%s-<symbol>\n", g.Prefix, g.Theme)
	b.WriteString(rule + "\n\n")

	currentSeason := 0
	for _, name := range names {
		if name.Season != currentSeason {
			if currentSeason != 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Season %d\n", name.Season)
			b.WriteString(strings.Repeat("-", 70) + "\n")
			currentSeason = name.Season
		}
		fmt.Fprintf(&b, "E%03d: %s\n", name.Episode, name.CodeName)
	}
	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Total Episodes: %d\n", len(names))
	b.WriteString(rule + "\n")

	if err := os.WriteFile(filepath.Join(outputDir, "episode-code-names.txt"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write text artifact: %w", err)
	}
	return nil
}
