package facegroup

import (
	"path"
	"slices"
	"strings"
)

// PersonImages is one enrollment folder: a person name and its image blobs.
type PersonImages struct {
	Name   string
	Images []string
}

// ParseLayout groups blob names following <root>/<person>/<file> by person.
// Names outside root, nested deeper than one folder, or without an allowed
// extension (case-insensitive) are ignored. Persons are sorted by name and
// images keep their listing order.
func ParseLayout(names []string, root string, extensions []string) []PersonImages {
	root = strings.Trim(root, "/")
	prefix := root + "/"

	byPerson := make(map[string][]string)
	for _, name := range names {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		person, file, ok := strings.Cut(rest, "/")
		if !ok || person == "" || file == "" || strings.Contains(file, "/") {
			continue
		}
		if !hasExtension(file, extensions) {
			continue
		}
		byPerson[person] = append(byPerson[person], name)
	}

	persons := make([]PersonImages, 0, len(byPerson))
	for name, images := range byPerson {
		persons = append(persons, PersonImages{Name: name, Images: images})
	}
	slices.SortFunc(persons, func(a, b PersonImages) int {
		return strings.Compare(a.Name, b.Name)
	})
	return persons
}

func hasExtension(file string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(file))
	for _, allowed := range extensions {
		allowed = strings.ToLower(allowed)
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if ext == allowed {
			return true
		}
	}
	return false
}
