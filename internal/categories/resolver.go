// Package categories resolves the category a course is filed under, creating
// categories named by an import when they do not exist yet.
package categories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/courseimport/internal/entities"
)

// ErrCategoryNotFound is returned when a category reference matches nothing.
var ErrCategoryNotFound = errors.New("category not found")

// Store is the category persistence the resolver needs.
type Store interface {
	FindByID(id uint) (*entities.Category, error)
	FindByIDNumber(idnumber string) (*entities.Category, error)
	GetDefault() (*entities.Category, error)
	Create(category *entities.Category) error
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a category reference to a category id. A nil or blank
// reference selects the default category; a numeric reference must be an
// existing id; anything else is looked up as an external identifier.
func (r *Resolver) Resolve(ref *string) (uint, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		category, err := r.store.GetDefault()
		if err != nil {
			return 0, fmt.Errorf("load default category: %w", err)
		}
		return category.ID, nil
	}

	value := strings.TrimSpace(*ref)
	if id, err := strconv.ParseUint(value, 10, 64); err == nil {
		category, err := r.store.FindByID(uint(id))
		if err != nil {
			return 0, fmt.Errorf("load category %d: %w", id, err)
		}
		if category == nil {
			return 0, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
		}
		return category.ID, nil
	}

	category, err := r.store.FindByIDNumber(value)
	if err != nil {
		return 0, fmt.Errorf("load category %q: %w", value, err)
	}
	if category == nil {
		return 0, fmt.Errorf("%w: idnumber %q", ErrCategoryNotFound, value)
	}
	return category.ID, nil
}

// ResolveOrCreate returns the category carrying idnumber. When none exists
// and a name is given, a category is created under parentID. Without an
// idnumber, or when nothing can be created, parentID is returned.
func (r *Resolver) ResolveOrCreate(parentID uint, name, idnumber string) (uint, error) {
	idnumber = strings.TrimSpace(idnumber)
	name = strings.TrimSpace(name)
	if idnumber == "" {
		return parentID, nil
	}

	existing, err := r.store.FindByIDNumber(idnumber)
	if err != nil {
		return 0, fmt.Errorf("load category %q: %w", idnumber, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	if name == "" {
		return parentID, nil
	}

	category := &entities.Category{
		ParentID: parentID,
		Name:     name,
		IDNumber: idnumber,
	}
	if err := r.store.Create(category); err != nil {
		return 0, fmt.Errorf("create category %q: %w", idnumber, err)
	}
	return category.ID, nil
}
