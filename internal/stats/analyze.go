package stats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

// Guild, shard and wedge names keyed by the lexicographically sorted color
// combination. Shards are consulted before wedges.
var guildNames = map[string]string{
	"U,W": "Azorius",
	"B,U": "Dimir",
	"B,R": "Rakdos",
	"G,R": "Gruul",
	"G,W": "Selesnya",
	"B,G": "Golgari",
	"R,U": "Izzet",
	"R,W": "Boros",
	"G,U": "Simic",
	"B,W": "Orzhov",
}

var shardNames = map[string]string{
	"G,U,W": "Bant",
	"B,R,U": "Grixis",
	"B,G,R": "Jund",
	"R,U,W": "Jeskai",
	"B,G,W": "Abzan",
}

var wedgeNames = map[string]string{
	"B,G,W": "Abzan",
	"R,U,W": "Jeskai",
	"B,G,R": "Sultai",
	"G,R,W": "Mardu",
	"B,R,U": "Temur",
}

func sortedColors(colors models.StringList) []string {
	out := make([]string, len(colors))
	copy(out, colors)
	sort.Strings(out)
	return out
}

func colorKey(sorted []string) string {
	return strings.Join(sorted, ",")
}

func analyzeColorDistribution(owned []models.CollectionCard, totalCards int) ColorBreakdown {
	breakdown := ColorBreakdown{
		MonoColor:    map[string]CountPercentage{},
		Guilds:       map[string]CountPercentage{},
		ShardsWedges: map[string]CountPercentage{},
		Quads:        []ColorGroup{},
		Reapers:      []ColorGroup{},
	}

	// Group printing buckets by color combination, summing quantities.
	groupCounts := map[string]int{}
	groupColors := map[string][]string{}
	for _, entry := range owned {
		sorted := sortedColors(entry.Card.Colors)
		key := colorKey(sorted)
		groupCounts[key] += entry.Quantity
		groupColors[key] = sorted
	}

	monoCounts := map[string]int{}
	guildCounts := map[string]int{}
	shardCounts := map[string]int{}

	keys := make([]string, 0, len(groupCounts))
	for key := range groupCounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		colors := groupColors[key]
		count := groupCounts[key]
		switch len(colors) {
		case 0:
			breakdown.Colorless = count
		case 1:
			monoCounts[colors[0]] += count
		case 2:
			name, ok := guildNames[key]
			if !ok {
				name = strings.Join(colors, "-")
			}
			guildCounts[name] += count
			breakdown.TotalMulticolor += count
		case 3:
			name, ok := shardNames[key]
			if !ok {
				name, ok = wedgeNames[key]
			}
			if !ok {
				name = strings.Join(colors, "-")
			}
			shardCounts[name] += count
			breakdown.TotalMulticolor += count
		case 4:
			breakdown.Quads = append(breakdown.Quads, ColorGroup{Colors: colors, Count: count})
			breakdown.TotalMulticolor += count
		case 5:
			breakdown.Reapers = append(breakdown.Reapers, ColorGroup{Colors: colors, Count: count})
			breakdown.TotalMulticolor += count
		}
	}

	for color, count := range monoCounts {
		breakdown.MonoColor[color] = CountPercentage{Count: count, Percentage: percentage(count, totalCards)}
	}
	for name, count := range guildCounts {
		breakdown.Guilds[name] = CountPercentage{Count: count, Percentage: percentage(count, totalCards)}
	}
	for name, count := range shardCounts {
		breakdown.ShardsWedges[name] = CountPercentage{Count: count, Percentage: percentage(count, totalCards)}
	}

	return breakdown
}

func analyzeCardTypes(owned []models.CollectionCard, totalCards int) TypeBreakdown {
	lineCounts := map[string]int{}
	for _, entry := range owned {
		lineCounts[entry.Card.TypeLine] += entry.Quantity
	}

	var creatures, instants, sorceries, artifacts, enchantments, planeswalkers, lands, other int
	detailed := make([]TypeEntry, 0, len(lineCounts))

	for typeLine, count := range lineCounts {
		lower := strings.ToLower(typeLine)
		switch {
		case strings.Contains(lower, "creature"):
			creatures += count
		case strings.Contains(lower, "instant"):
			instants += count
		case strings.Contains(lower, "sorcery"):
			sorceries += count
		case strings.Contains(lower, "artifact"):
			artifacts += count
		case strings.Contains(lower, "enchantment"):
			enchantments += count
		case strings.Contains(lower, "planeswalker"):
			planeswalkers += count
		case strings.Contains(lower, "land"):
			lands += count
		default:
			other += count
		}

		detailed = append(detailed, TypeEntry{
			Type:       typeLine,
			Count:      count,
			Percentage: percentage(count, totalCards),
		})
	}

	sort.Slice(detailed, func(i, j int) bool {
		if detailed[i].Count != detailed[j].Count {
			return detailed[i].Count > detailed[j].Count
		}
		return detailed[i].Type < detailed[j].Type
	})
	if len(detailed) > 15 {
		detailed = detailed[:15]
	}

	category := func(count int) CountPercentage {
		return CountPercentage{Count: count, Percentage: percentage(count, totalCards)}
	}

	return TypeBreakdown{
		Categories: TypeCategories{
			Creatures:     category(creatures),
			Instants:      category(instants),
			Sorceries:     category(sorceries),
			Artifacts:     category(artifacts),
			Enchantments:  category(enchantments),
			Planeswalkers: category(planeswalkers),
			Lands:         category(lands),
			Other:         category(other),
		},
		Detailed: detailed,
	}
}

// analyzeCreaturePowerToughness bands creatures by stat shape. high_power and
// high_toughness are non-exclusive; utility/efficient/threats are evaluated
// in that priority order, so shapes like 1/3 fall outside all three bands.
// Percentages are over the sum of the six band counts.
func analyzeCreaturePowerToughness(owned []models.CollectionCard) CreatureRanges {
	var utility, efficient, threats, highPower, highToughness, variable int

	for _, entry := range owned {
		card := entry.Card
		if !strings.Contains(strings.ToLower(card.TypeLine), "creature") {
			continue
		}
		if card.Power == nil || card.Toughness == nil {
			continue
		}
		count := entry.Quantity

		power, toughness := *card.Power, *card.Toughness
		if power == "*" || toughness == "*" ||
			strings.Contains(power, "X") || strings.Contains(toughness, "X") {
			variable += count
			continue
		}

		p, perr := strconv.Atoi(power)
		t, terr := strconv.Atoi(toughness)
		if perr != nil || terr != nil {
			variable += count
			continue
		}

		if p >= 5 {
			highPower += count
		}
		if t >= 5 {
			highToughness += count
		}

		if p <= 1 && t <= 1 {
			utility += count
		} else if p >= 2 && p <= 3 && t >= 2 && t <= 3 {
			efficient += count
		} else if p >= 4 || t >= 4 {
			threats += count
		}
	}

	total := utility + efficient + threats + highPower + highToughness + variable
	band := func(count int) CountPercentage {
		return CountPercentage{Count: count, Percentage: percentage(count, total)}
	}

	return CreatureRanges{
		Utility:       band(utility),
		Efficient:     band(efficient),
		Threats:       band(threats),
		HighPower:     band(highPower),
		HighToughness: band(highToughness),
		Variable:      band(variable),
	}
}

// analyzeTribalTypes counts creature subtypes from the text after the type
// line's em-dash. Lines without the separator contribute nothing.
func analyzeTribalTypes(owned []models.CollectionCard) []TribeEntry {
	counts := map[string]int{}

	for _, entry := range owned {
		typeLine := entry.Card.TypeLine
		if !strings.Contains(strings.ToLower(typeLine), "creature") {
			continue
		}
		_, after, found := strings.Cut(typeLine, "—")
		if !found {
			continue
		}
		for _, token := range strings.Fields(after) {
			if strings.ToLower(token) == "creature" {
				continue
			}
			counts[token] += entry.Quantity
		}
	}

	entries := make([]TribeEntry, 0, len(counts))
	for tribe, count := range counts {
		entries = append(entries, TribeEntry{Tribe: tribe, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Tribe < entries[j].Tribe
	})
	if len(entries) > 20 {
		entries = entries[:20]
	}
	return entries
}
