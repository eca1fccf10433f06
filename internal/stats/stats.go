package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

// Report is the full collection statistics payload.
type Report struct {
	TotalCards  int     `json:"total_cards"`
	UniqueCards int     `json:"unique_cards"`
	AverageCMC  float64 `json:"average_cmc"`

	ColorDistribution  ColorBreakdown `json:"color_distribution"`
	RarityDistribution []RarityEntry  `json:"rarity_distribution"`
	TypeDistribution   TypeBreakdown  `json:"type_distribution"`
	CreatureAnalysis   CreatureRanges `json:"creature_analysis"`
	TribalAnalysis     []TribeEntry   `json:"tribal_analysis"`
	SetDistribution    []SetEntry     `json:"set_distribution"`
	KeywordAnalysis    []KeywordEntry `json:"keyword_analysis"`
	FormatLegality     FormatLegality `json:"format_legality"`
}

type CountPercentage struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ColorGroup struct {
	Colors []string `json:"colors"`
	Count  int      `json:"count"`
}

type ColorBreakdown struct {
	MonoColor       map[string]CountPercentage `json:"mono_color"`
	Guilds          map[string]CountPercentage `json:"guilds"`
	ShardsWedges    map[string]CountPercentage `json:"shards_wedges"`
	Quads           []ColorGroup               `json:"quads"`
	Reapers         []ColorGroup               `json:"reapers"`
	Colorless       int                        `json:"colorless"`
	TotalMulticolor int                        `json:"total_multicolor"`
}

type RarityEntry struct {
	Rarity     string  `json:"rarity"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TypeEntry struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TypeBreakdown struct {
	Categories TypeCategories `json:"categories"`
	Detailed   []TypeEntry    `json:"detailed"`
}

type TypeCategories struct {
	Creatures     CountPercentage `json:"creatures"`
	Instants      CountPercentage `json:"instants"`
	Sorceries     CountPercentage `json:"sorceries"`
	Artifacts     CountPercentage `json:"artifacts"`
	Enchantments  CountPercentage `json:"enchantments"`
	Planeswalkers CountPercentage `json:"planeswalkers"`
	Lands         CountPercentage `json:"lands"`
	Other         CountPercentage `json:"other"`
}

type CreatureRanges struct {
	Utility       CountPercentage `json:"utility"`
	Efficient     CountPercentage `json:"efficient"`
	Threats       CountPercentage `json:"threats"`
	HighPower     CountPercentage `json:"high_power"`
	HighToughness CountPercentage `json:"high_toughness"`
	Variable      CountPercentage `json:"variable"`
}

type TribeEntry struct {
	Tribe string `json:"tribe"`
	Count int    `json:"count"`
}

type KeywordEntry struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type SetEntry struct {
	SetName     string `json:"set_name"`
	SetCode     string `json:"set_code"`
	TotalCards  int    `json:"total_cards"`
	UniqueCards int    `json:"unique_cards"`
}

// FormatLegality is a placeholder until a legality data source exists.
type FormatLegality struct {
	Standard     int            `json:"standard"`
	Modern       int            `json:"modern"`
	Legacy       int            `json:"legacy"`
	Extended     int            `json:"extended"`
	OtherFormats map[string]int `json:"other_formats"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ComputeStats builds the full report over the user's collection joined with
// the card cache. Pure read, no persisted state.
func (s *Service) ComputeStats(userID uint) (*Report, error) {
	var owned []models.CollectionCard
	err := s.db.Preload("Card").Where("user_id = ?", userID).Find(&owned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	totalCards := 0
	for _, entry := range owned {
		totalCards += entry.Quantity
	}

	report := &Report{
		TotalCards:         totalCards,
		UniqueCards:        len(owned),
		AverageCMC:         averageCMC(owned),
		ColorDistribution:  analyzeColorDistribution(owned, totalCards),
		RarityDistribution: analyzeRarityDistribution(owned, totalCards),
		TypeDistribution:   analyzeCardTypes(owned, totalCards),
		CreatureAnalysis:   analyzeCreaturePowerToughness(owned),
		TribalAnalysis:     analyzeTribalTypes(owned),
		SetDistribution:    analyzeSetDistribution(owned),
		KeywordAnalysis:    analyzeKeywords(owned),
		FormatLegality:     FormatLegality{OtherFormats: map[string]int{}},
	}

	return report, nil
}

// averageCMC is the unweighted mean over printing buckets with a known CMC;
// quantity is deliberately not a factor.
func averageCMC(owned []models.CollectionCard) float64 {
	sum, count := 0, 0
	for _, entry := range owned {
		if entry.Card.CMC == nil {
			continue
		}
		sum += *entry.Card.CMC
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*100) / 100
}

// percentage is count/total scaled to one decimal, rounding half away from
// zero. A zero total yields 0 rather than an error.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func analyzeRarityDistribution(owned []models.CollectionCard, totalCards int) []RarityEntry {
	counts := map[string]int{}
	for _, entry := range owned {
		counts[entry.Card.Rarity] += entry.Quantity
	}

	entries := make([]RarityEntry, 0, len(counts))
	for rarity, count := range counts {
		entries = append(entries, RarityEntry{
			Rarity:     rarity,
			Count:      count,
			Percentage: percentage(count, totalCards),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Rarity < entries[j].Rarity
	})
	return entries
}

func analyzeSetDistribution(owned []models.CollectionCard) []SetEntry {
	type setGroup struct {
		total int
		cards map[string]bool
	}
	groups := map[[2]string]*setGroup{}
	for _, entry := range owned {
		key := [2]string{entry.Card.SetName, entry.Card.SetCode}
		group, ok := groups[key]
		if !ok {
			group = &setGroup{cards: map[string]bool{}}
			groups[key] = group
		}
		group.total += entry.Quantity
		group.cards[entry.ScryfallID] = true
	}

	entries := make([]SetEntry, 0, len(groups))
	for key, group := range groups {
		entries = append(entries, SetEntry{
			SetName:     key[0],
			SetCode:     key[1],
			TotalCards:  group.total,
			UniqueCards: len(group.cards),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalCards != entries[j].TotalCards {
			return entries[i].TotalCards > entries[j].TotalCards
		}
		return entries[i].SetName < entries[j].SetName
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}
	return entries
}

func analyzeKeywords(owned []models.CollectionCard) []KeywordEntry {
	counts := map[string]int{}
	for _, entry := range owned {
		for _, keyword := range entry.Card.Keywords {
			counts[keyword] += entry.Quantity
		}
	}

	entries := make([]KeywordEntry, 0, len(counts))
	for keyword, count := range counts {
		entries = append(entries, KeywordEntry{Keyword: keyword, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Keyword < entries[j].Keyword
	})
	if len(entries) > 20 {
		entries = entries[:20]
	}
	return entries
}
