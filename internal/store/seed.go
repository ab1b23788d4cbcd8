package store

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"run-planner/internal/planner/model"
)

// Seed is a fixture of address books and locations for the in-memory store.
// JSON files load too, being valid YAML.
type Seed struct {
	CustomerAddresses []seedCustomerAddress `yaml:"customerAddresses"`
	Locations         []seedLocation        `yaml:"locations"`
}

type seedAddress struct {
	Addr1 string  `yaml:"addr1"`
	Addr2 string  `yaml:"addr2"`
	City  string  `yaml:"city"`
	State string  `yaml:"state"`
	Zip   string  `yaml:"zip"`
	Lat   float64 `yaml:"lat"`
	Lng   float64 `yaml:"lng"`
}

func (a seedAddress) model() model.Address {
	return model.Address{Addr1: a.Addr1, Addr2: a.Addr2, City: a.City, State: a.State, Zip: a.Zip, Lat: a.Lat, Lng: a.Lng}
}

type seedCustomerAddress struct {
	ID          string      `yaml:"id"`
	CustomerID  string      `yaml:"customerId"`
	CompanyName string      `yaml:"companyName"`
	Address     seedAddress `yaml:"address"`
}

type seedLocation struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Address  seedAddress `yaml:"address"`
	Inactive bool        `yaml:"inactive"`
}

// ReadSeed decodes a fixture. Entries without an id get one; address-book
// entries must name their customer.
func ReadSeed(r io.Reader) (Seed, error) {
	var s Seed
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	for i := range s.CustomerAddresses {
		a := &s.CustomerAddresses[i]
		if a.CustomerID == "" {
			return Seed{}, fmt.Errorf("seed: customer address %d has no customerId", i+1)
		}
		if a.ID == "" {
			a.ID = newID()
		}
	}
	for i := range s.Locations {
		l := &s.Locations[i]
		if l.Name == "" {
			return Seed{}, fmt.Errorf("seed: location %d has no name", i+1)
		}
		if l.ID == "" {
			l.ID = newID()
		}
	}
	return s, nil
}

// Apply appends the fixture to m in file order.
func (s Seed) Apply(m *Memory) {
	for _, a := range s.CustomerAddresses {
		m.AddCustomerAddress(model.CustomerAddress{ID: a.ID, CustomerID: a.CustomerID, CompanyName: a.CompanyName, Address: a.Address.model()})
	}
	for _, l := range s.Locations {
		m.AddLocation(model.Location{ID: l.ID, Name: l.Name, Address: l.Address.model(), Inactive: l.Inactive})
	}
}

// LoadSeedFile reads path and applies it to m.
func LoadSeedFile(path string, m *Memory) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	s, err := ReadSeed(f)
	if err != nil {
		return Seed{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Apply(m)
	return s, nil
}
