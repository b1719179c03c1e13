package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Currency   string `yaml:"currency"`
	FieldBound int    `yaml:"field_bound"`
	MaxActive  int    `yaml:"max_active"`

	Tiers []Tier `yaml:"tiers"`

	VaultCapacity int    `yaml:"vault_capacity"`
	AwardMode     string `yaml:"award_mode"` // "random" or "fifo"
	AutoRespawn   bool   `yaml:"auto_respawn"`

	MaxPurchase uint64 `yaml:"max_purchase"`

	Revenue RevenueTuning `yaml:"revenue"`
	Vending VendingTuning `yaml:"vending"`

	Auth AuthTuning `yaml:"auth"`
}

type Tier struct {
	Name      string `yaml:"name"`
	Price     uint64 `yaml:"price"`
	CatchRate int    `yaml:"catch_rate"`
}

type RevenueTuning struct {
	FeeRateBps uint64 `yaml:"fee_rate_bps"`
}

type VendingTuning struct {
	UnitCost  uint64 `yaml:"unit_cost"`
	Threshold uint64 `yaml:"threshold"`
}

type AuthTuning struct {
	AdminToken    string `yaml:"admin_token"`
	ProviderToken string `yaml:"provider_token"`
	ProviderID    string `yaml:"provider_id"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		Currency:        "GRID",
		FieldBound:      999,
		MaxActive:       20,
		Tiers: []Tier{
			{Name: "basic", Price: 100, CatchRate: 2},
			{Name: "great", Price: 1000, CatchRate: 20},
			{Name: "ultra", Price: 2500, CatchRate: 50},
			{Name: "master", Price: 4990, CatchRate: 99},
		},
		VaultCapacity: 20,
		AwardMode:     "random",
		AutoRespawn:   true,
		MaxPurchase:   1_000_000,
		Revenue:       RevenueTuning{FeeRateBps: 300},
		Vending:       VendingTuning{UnitCost: 2000, Threshold: 2000},
	}
}

func (t Tuning) Validate() error {
	if len(t.Tiers) == 0 {
		return fmt.Errorf("no tiers configured")
	}
	for _, tier := range t.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier with empty name")
		}
		if tier.Price == 0 {
			return fmt.Errorf("tier %s: zero price", tier.Name)
		}
		if tier.CatchRate < 0 || tier.CatchRate > 100 {
			return fmt.Errorf("tier %s: catch_rate %d out of range 0..100", tier.Name, tier.CatchRate)
		}
	}
	if t.FieldBound <= 0 {
		return fmt.Errorf("field_bound must be positive")
	}
	if t.MaxActive < 1 {
		return fmt.Errorf("max_active must be >= 1")
	}
	if t.VaultCapacity < 1 {
		return fmt.Errorf("vault_capacity must be >= 1")
	}
	switch t.AwardMode {
	case "random", "fifo":
	default:
		return fmt.Errorf("award_mode %q (want random or fifo)", t.AwardMode)
	}
	if t.Revenue.FeeRateBps > 10000 {
		return fmt.Errorf("fee_rate_bps %d exceeds 10000", t.Revenue.FeeRateBps)
	}
	if t.Vending.UnitCost == 0 {
		return fmt.Errorf("vending unit_cost must be positive")
	}
	return nil
}

// TierIndex resolves a tier name to its position, or -1.
func (t Tuning) TierIndex(name string) int {
	for i, tier := range t.Tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}
