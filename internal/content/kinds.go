package content

import (
	"encoding/json"

	"github.com/portfolio-cms/content-api/internal/schema"
	"github.com/portfolio-cms/content-api/internal/store"
)

// Kind describes one record kind: where it is served, where it is stored and
// how its payloads are validated.
type Kind struct {
	Name       string // schema name, e.g. "CollectionItem"
	Path       string // segment under /api, e.g. "collections"
	Collection string // store collection, e.g. "collectionitem"
	Schema     *schema.Schema
	Unique     []string        // fields with a store-level uniqueness constraint
	Listable   bool            // whether GET /api/<path> is exposed
	Ack        string          // extra "status" echoed on successful create
	Example    json.RawMessage // minimal valid payload, shown in the API docs

	newRecord func() any
	decode    func(store.Document) (any, error)
}

func define[T any](name, path, collection, example string) Kind {
	return Kind{
		Name:       name,
		Path:       path,
		Collection: collection,
		Example:    json.RawMessage(example),
		Schema:     schema.New[T](name),
		Listable:   true,
		newRecord:  func() any { return new(T) },
		decode: func(doc store.Document) (any, error) {
			var rec T
			if err := doc.Decode(&rec); err != nil {
				return nil, err
			}
			schema.Normalize(&rec)
			return rec, nil
		},
	}
}

var kinds = func() []Kind {
	project := define[Project]("Project", "projects", "project",
		`{"title":"Wayfinding for a city library","slug":"library-wayfinding","tags":["signage"]}`)
	project.Unique = []string{"slug"}

	contact := define[ContactMessage]("ContactMessage", "contact", "contactmessage",
		`{"name":"Sam","email":"sam@example.com","message":"Hello!"}`)
	contact.Listable = false
	contact.Ack = "received"

	return []Kind{
		define[Profile]("Profile", "profile", "profile",
			`{"name":"Alex Doe","subtitle":"Graphic designer","bio":"I design books and posters."}`),
		project,
		define[CollectionItem]("CollectionItem", "collections", "collectionitem",
			`{"category":"Typography","title":"Poster series","image_url":"https://cdn.example.com/poster.png"}`),
		define[Experience]("Experience", "experience", "experience",
			`{"type":"Internship","role":"Junior designer","org":"Studio North","start":"2023-06"}`),
		define[Service]("Service", "services", "service",
			`{"title":"Brand identity","description":"Logos, palettes and type systems."}`),
		contact,
	}
}()

// Kinds returns every record kind in registration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Lookup finds a kind by its path segment.
func Lookup(path string) (Kind, bool) {
	for _, k := range kinds {
		if k.Path == path {
			return k, true
		}
	}
	return Kind{}, false
}

// Parse validates body against the kind's schema and returns a pointer to the
// normalized record. Failures are *schema.ValidationError.
func (k Kind) Parse(body []byte) (any, error) {
	rec := k.newRecord()
	if err := k.Schema.Decode(body, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Decode converts a stored document into the kind's record shape.
func (k Kind) Decode(doc store.Document) (any, error) {
	return k.decode(doc)
}
