package devserver

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/caredesk/caredesk/internal/registration"
)

//go:embed seed.yaml
var builtinSeed []byte

// SeedUser is a staff account created at startup.
type SeedUser struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Email             string   `yaml:"email"`
	Password          string   `yaml:"password"`
	Role              string   `yaml:"role"`
	AssignedDoctorIDs []string `yaml:"assigned_doctors,omitempty"`
}

// Seed is the initial data of a dev server.
type Seed struct {
	Users   []SeedUser
	Catalog registration.Catalog
}

type seedFile struct {
	Users    []SeedUser    `yaml:"users"`
	Services []seedService `yaml:"services"`
	Doctors  []seedDoctor  `yaml:"doctors"`
}

type seedService struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	FeeCents       int64  `yaml:"fee_cents"`
	RequiresDoctor bool   `yaml:"requires_doctor"`
}

type seedDoctor struct {
	ID                   string   `yaml:"id"`
	Name                 string   `yaml:"name"`
	Specialty            string   `yaml:"specialty"`
	ConsultationFeeCents int64    `yaml:"consultation_fee_cents"`
	Services             []string `yaml:"services"`
}

// DefaultSeed returns the bundled accounts and catalog.
func DefaultSeed() Seed {
	seed, err := parseSeed(builtinSeed)
	if err != nil {
		panic(fmt.Sprintf("devserver: bundled seed is invalid: %v", err))
	}
	return seed
}

// DefaultUsers are the accounts available in a fresh dev server.
func DefaultUsers() []SeedUser {
	return DefaultSeed().Users
}

// DefaultCatalog is the services and doctors offered by a fresh dev server.
func DefaultCatalog() registration.Catalog {
	return DefaultSeed().Catalog
}

// LoadSeed reads a seed file in the same YAML layout as the bundled one.
func LoadSeed(path string) (Seed, error) {
	if strings.TrimSpace(path) == "" {
		return Seed{}, fmt.Errorf("seed path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}

	seed, err := parseSeed(data)
	if err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return seed, nil
}

func parseSeed(data []byte) (Seed, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Seed{}, err
	}

	seed := Seed{Users: file.Users}
	for _, s := range file.Services {
		seed.Catalog.Services = append(seed.Catalog.Services, registration.Service{
			ID:             strings.TrimSpace(s.ID),
			Name:           s.Name,
			FeeCents:       s.FeeCents,
			RequiresDoctor: s.RequiresDoctor,
		})
	}
	for _, d := range file.Doctors {
		seed.Catalog.Doctors = append(seed.Catalog.Doctors, registration.Doctor{
			ID:                   strings.TrimSpace(d.ID),
			Name:                 d.Name,
			Specialty:            d.Specialty,
			ConsultationFeeCents: d.ConsultationFeeCents,
			ServiceIDs:           d.Services,
		})
	}

	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// Validate checks that the seed is self-consistent.
func (s Seed) Validate() error {
	if len(s.Users) == 0 {
		return fmt.Errorf("at least one user is required")
	}

	services := make(map[string]bool, len(s.Catalog.Services))
	for _, svc := range s.Catalog.Services {
		if svc.ID == "" || svc.Name == "" {
			return fmt.Errorf("service %q: id and name are required", svc.ID)
		}
		if services[svc.ID] {
			return fmt.Errorf("duplicate service %q", svc.ID)
		}
		if svc.FeeCents < 0 {
			return fmt.Errorf("service %q: negative fee", svc.ID)
		}
		services[svc.ID] = true
	}

	doctors := make(map[string]bool, len(s.Catalog.Doctors))
	for _, d := range s.Catalog.Doctors {
		if d.ID == "" || d.Name == "" {
			return fmt.Errorf("doctor %q: id and name are required", d.ID)
		}
		if doctors[d.ID] {
			return fmt.Errorf("duplicate doctor %q", d.ID)
		}
		for _, id := range d.ServiceIDs {
			if !services[id] {
				return fmt.Errorf("doctor %q offers unknown service %q", d.ID, id)
			}
		}
		doctors[d.ID] = true
	}

	emails := make(map[string]bool, len(s.Users))
	for _, u := range s.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.Password == "" {
			return fmt.Errorf("user %q: email and password are required", u.ID)
		}
		if emails[email] {
			return fmt.Errorf("duplicate user %q", email)
		}
		for _, id := range u.AssignedDoctorIDs {
			if !doctors[id] {
				return fmt.Errorf("user %q is assigned unknown doctor %q", email, id)
			}
		}
		emails[email] = true
	}
	return nil
}
