package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Item is one thing a shop sells. A purchase of quantity q costs Price*q and
// gives UnitQuantity*q of Item.
type Item struct {
	ID           string `yaml:"id" json:"id"`
	Label        string `yaml:"label" json:"label"`
	Item         string `yaml:"item" json:"item"`
	Data         int    `yaml:"data,omitempty" json:"data,omitempty"`
	UnitQuantity int    `yaml:"unit_quantity" json:"unit_quantity"`
	Price        int64  `yaml:"price" json:"price"`
	MaxQuantity  int    `yaml:"max_quantity" json:"max_quantity"`
	Step         int    `yaml:"step,omitempty" json:"step,omitempty"`
}

// AllowsQuantity reports whether q can be bought in one purchase
func (i Item) AllowsQuantity(q int) bool {
	if q < 1 || q > i.MaxQuantity {
		return false
	}
	return i.Step <= 1 || q%i.Step == 0
}

// Shop is an NPC vendor
type Shop struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Greeting string `yaml:"greeting,omitempty" json:"greeting,omitempty"`
	Items    []Item `yaml:"items" json:"items"`
}

// Item finds an item by id
func (s *Shop) Item(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Buff is a timed status effect a guild leader buys for every online member
type Buff struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	Effect          string `yaml:"effect" json:"effect"`
	Amplifier       int    `yaml:"amplifier" json:"amplifier"`
	DurationSeconds int    `yaml:"duration_seconds" json:"duration_seconds"`
	Price           int64  `yaml:"price" json:"price"`
}

// DepositRate is what the bank pays per unit of a deposited item
type DepositRate struct {
	Item  string `yaml:"item" json:"item"`
	Label string `yaml:"label" json:"label"`
	Rate  int64  `yaml:"rate" json:"rate"`
}

// Catalog holds every shop, buff and deposit rate
type Catalog struct {
	Shops    []Shop        `yaml:"shops" json:"shops"`
	Buffs    []Buff        `yaml:"buffs" json:"buffs"`
	Deposits []DepositRate `yaml:"deposits" json:"deposits"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded default when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids are unique and every price and quantity is positive
func (c *Catalog) Validate() error {
	var errs []error
	shops := map[string]bool{}
	for _, s := range c.Shops {
		if s.ID == "" {
			errs = append(errs, errors.New("shop without id"))
			continue
		}
		if shops[s.ID] {
			errs = append(errs, fmt.Errorf("shop %q defined twice", s.ID))
		}
		shops[s.ID] = true
		items := map[string]bool{}
		for _, it := range s.Items {
			where := s.ID + "/" + it.ID
			switch {
			case it.ID == "":
				errs = append(errs, fmt.Errorf("shop %q has an item without id", s.ID))
			case items[it.ID]:
				errs = append(errs, fmt.Errorf("item %s defined twice", where))
			case strings.TrimSpace(it.Item) == "":
				errs = append(errs, fmt.Errorf("item %s has no game item", where))
			case it.Price <= 0 || it.UnitQuantity <= 0 || it.MaxQuantity <= 0:
				errs = append(errs, fmt.Errorf("item %s needs positive price, unit_quantity and max_quantity", where))
			case it.Step < 0:
				errs = append(errs, fmt.Errorf("item %s has negative step", where))
			}
			items[it.ID] = true
		}
	}
	buffs := map[string]bool{}
	for _, b := range c.Buffs {
		switch {
		case b.ID == "" || b.Effect == "":
			errs = append(errs, fmt.Errorf("buff %q needs id and effect", b.ID))
		case buffs[b.ID]:
			errs = append(errs, fmt.Errorf("buff %q defined twice", b.ID))
		case b.Price <= 0 || b.DurationSeconds <= 0 || b.Amplifier < 0:
			errs = append(errs, fmt.Errorf("buff %q needs positive price and duration", b.ID))
		}
		buffs[b.ID] = true
	}
	for _, d := range c.Deposits {
		if d.Item == "" || d.Rate <= 0 {
			errs = append(errs, fmt.Errorf("deposit %q needs item and positive rate", d.Item))
		}
	}
	return errors.Join(errs...)
}

// Shop finds a shop by id
func (c *Catalog) Shop(id string) (*Shop, bool) {
	for i := range c.Shops {
		if c.Shops[i].ID == id {
			return &c.Shops[i], true
		}
	}
	return nil, false
}

// Buff finds a buff by id
func (c *Catalog) Buff(id string) (Buff, bool) {
	for _, b := range c.Buffs {
		if b.ID == id {
			return b, true
		}
	}
	return Buff{}, false
}

// Deposit finds the deposit rate for a game item
func (c *Catalog) Deposit(item string) (DepositRate, bool) {
	for _, d := range c.Deposits {
		if d.Item == item {
			return d, true
		}
	}
	return DepositRate{}, false
}
