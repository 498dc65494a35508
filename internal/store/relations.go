package store

import (
	"context"
	"fmt"

	"github.com/ai-startup-tracker/tracker/internal/query"
)

func scanPerson(sc scanner) (Person, error) {
	var p Person
	err := sc.Scan(&p.ID, &p.Name, &p.Role, &p.StartupName, &p.LinkedIn, &p.GitHub,
		&p.Twitter, &p.Email, &p.StartupID)
	return p, err
}

func scanContent(sc scanner) (Content, error) {
	var c Content
	err := sc.Scan(&c.ID, &c.StartupName, &c.ContentType, &c.Title, &c.URL, &c.Summary,
		&c.RelevanceToTiDB, &c.PublishedAt)
	return c, err
}

func scanProduct(sc scanner) (Product, error) {
	var p Product
	err := sc.Scan(&p.ID, &p.Name, &p.Company, &p.URL, &p.Description, &p.Category, &p.Region,
		&p.DiscoveredAt, &p.StartupID)
	return p, err
}

// Persons runs a statement selecting query.PersonColumns.
func (s *Store) Persons(ctx context.Context, st query.Statement) ([]Person, error) {
	out, err := collect(ctx, s.db, st, scanPerson)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return out, nil
}

// Content runs a statement selecting query.ContentColumns.
func (s *Store) Content(ctx context.Context, st query.Statement) ([]Content, error) {
	out, err := collect(ctx, s.db, st, scanContent)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return out, nil
}

// Products runs a statement selecting query.ProductColumns.
func (s *Store) Products(ctx context.Context, st query.Statement) ([]Product, error) {
	out, err := collect(ctx, s.db, st, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return out, nil
}

func (s *Store) ProductCategories(ctx context.Context) ([]string, error) {
	out, err := collect(ctx, s.db, query.ProductCategories(), func(sc scanner) (string, error) {
		var c string
		err := sc.Scan(&c)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}
