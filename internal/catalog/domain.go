package catalog

import (
	"fmt"
	"strings"
)

// Domain is the kind of catalog entry being enriched.
type Domain string

const (
	DomainBook    Domain = "book"
	DomainMovie   Domain = "movie"
	DomainTV      Domain = "tv"
	DomainPodcast Domain = "podcast"
	DomainArticle Domain = "article"
)

// Domains lists every supported domain in display order.
func Domains() []Domain {
	return []Domain{DomainBook, DomainMovie, DomainTV, DomainPodcast, DomainArticle}
}

var domainAliases = map[string]Domain{
	"book":     DomainBook,
	"books":    DomainBook,
	"movie":    DomainMovie,
	"movies":   DomainMovie,
	"film":     DomainMovie,
	"tv":       DomainTV,
	"show":     DomainTV,
	"series":   DomainTV,
	"podcast":  DomainPodcast,
	"podcasts": DomainPodcast,
	"article":  DomainArticle,
	"articles": DomainArticle,
}

// ParseDomain resolves a user-supplied domain name.
func ParseDomain(value string) (Domain, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if domain, ok := domainAliases[key]; ok {
		return domain, nil
	}
	return "", fmt.Errorf("unknown domain %q", value)
}

// Valid reports whether d is one of the supported domains.
func (d Domain) Valid() bool {
	for _, known := range Domains() {
		if d == known {
			return true
		}
	}
	return false
}

func (d Domain) String() string { return string(d) }
