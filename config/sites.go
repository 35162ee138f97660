package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultSites is the built-in probe target list: one entry per supported
// country domain. Keywords are ordered by how specifically they identify the
// promotion count on that locale's pages.
func defaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Country:     "de",
			RootURL:     "https://www.action.com/de-de",
			ListingPath: "/angebote/",
			Locale:      "de-DE",
			Keywords:    []string{"Aktionsartikel", "Artikel gefunden", "Produkte gefunden", "Artikel"},
		},
		{
			Country:     "nl",
			RootURL:     "https://www.action.com/nl-nl",
			ListingPath: "/acties/",
			Locale:      "nl-NL",
			Keywords:    []string{"actieartikelen", "artikelen gevonden", "producten gevonden", "artikelen"},
		},
		{
			Country:     "be",
			RootURL:     "https://www.action.com/nl-be",
			ListingPath: "/acties/",
			Locale:      "nl-BE",
			Keywords:    []string{"actieartikelen", "artikelen gevonden", "producten gevonden", "artikelen"},
		},
		{
			Country:     "fr",
			RootURL:     "https://www.action.com/fr-fr",
			ListingPath: "/promotions/",
			Locale:      "fr-FR",
			Keywords:    []string{"articles promotionnels", "articles trouvés", "produits trouvés", "articles"},
		},
		{
			Country:     "at",
			RootURL:     "https://www.action.com/de-at",
			ListingPath: "/angebote/",
			Locale:      "de-AT",
			Keywords:    []string{"Aktionsartikel", "Artikel gefunden", "Produkte gefunden", "Artikel"},
		},
		{
			Country:     "pl",
			RootURL:     "https://www.action.com/pl-pl",
			ListingPath: "/promocje/",
			Locale:      "pl-PL",
			Keywords:    []string{"artykuły promocyjne", "znaleziono", "produktów", "artykułów"},
			ForceRender: true,
		},
		{
			Country:     "cz",
			RootURL:     "https://www.action.com/cs-cz",
			ListingPath: "/akce/",
			Locale:      "cs-CZ",
			Keywords:    []string{"akční zboží", "nalezeno", "produktů", "položek"},
			ForceRender: true,
		},
	}
}

// loadSites returns the site list from the given YAML file, or the built-in
// defaults when path is empty. Every entry is validated; country codes must
// be unique.
func loadSites(path string) ([]SiteConfig, error) {
	sites := defaultSites()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sites file: %w", err)
		}
		var file struct {
			Sites []SiteConfig `yaml:"sites"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse sites file %s: %w", path, err)
		}
		if len(file.Sites) == 0 {
			return nil, fmt.Errorf("sites file %s contains no sites", path)
		}
		sites = file.Sites
	}

	seen := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[s.Country]; dup {
			return nil, fmt.Errorf("duplicate country code %q in site list", s.Country)
		}
		seen[s.Country] = struct{}{}
	}
	return sites, nil
}
