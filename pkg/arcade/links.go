package arcade

import (
	"fmt"
	"strings"
)

// Relation names the service uses for page navigation.
const (
	RelFirst = "first"
	RelPrev  = "prev"
	RelNext  = "next"
	RelLast  = "last"
)

// Relation is one navigation hint parsed from a Link header entry: a target
// URL tagged with a relation name. Relation names outside the four paging
// ones are preserved as-is.
type Relation struct {
	Href string `json:"href" yaml:"href"`
	Rel  string `json:"rel"  yaml:"rel"`
}

// PageLinks holds the four navigation links a collection response may carry.
// An empty field means the response did not advertise that relation.
type PageLinks struct {
	First string `json:"first,omitempty" yaml:"first,omitempty"`
	Prev  string `json:"prev,omitempty"  yaml:"prev,omitempty"`
	Next  string `json:"next,omitempty"  yaml:"next,omitempty"`
	Last  string `json:"last,omitempty"  yaml:"last,omitempty"`
}

// ParseLinkHeader parses raw Link header values into Relations. A header may
// legally repeat, each value holding comma-separated entries of the form
// "<url>; rel=\"name\"; other=param".
//
// Malformed entries (no segments beyond the URL, or property segments
// without "=") are dropped without error. An entry that carries properties
// but no rel is a contract violation and fails the whole call with
// ErrMissingRelation.
func ParseLinkHeader(values ...string) ([]Relation, error) {
	var relations []Relation

	for _, value := range values {
		for _, entry := range strings.Split(value, ",") {
			if strings.TrimSpace(entry) == "" {
				continue
			}

			segments := strings.Split(entry, ";")
			if len(segments) < 2 {
				continue
			}

			href := strings.TrimSpace(segments[0])
			href = strings.TrimPrefix(href, "<")
			href = strings.TrimSuffix(href, ">")

			props := parseLinkProperties(segments[1:])

			rel, ok := props["rel"]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrMissingRelation, strings.TrimSpace(entry))
			}

			relations = append(relations, Relation{Href: href, Rel: rel})
		}
	}

	return relations, nil
}

// parseLinkProperties builds the property map for one link entry. Later
// occurrences of a key overwrite earlier ones within the same entry.
func parseLinkProperties(segments []string) map[string]string {
	props := make(map[string]string, len(segments))

	for _, segment := range segments {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}

		props[key] = value
	}

	return props
}

// ResolvePageLinks binds Relations to the four page navigation slots. For
// each slot the first Relation with the matching name wins; later duplicates
// are ignored.
func ResolvePageLinks(relations []Relation) PageLinks {
	var links PageLinks

	for _, relation := range relations {
		switch relation.Rel {
		case RelFirst:
			if links.First == "" {
				links.First = relation.Href
			}
		case RelPrev:
			if links.Prev == "" {
				links.Prev = relation.Href
			}
		case RelNext:
			if links.Next == "" {
				links.Next = relation.Href
			}
		case RelLast:
			if links.Last == "" {
				links.Last = relation.Href
			}
		}
	}

	return links
}
