package usecase

import "github.com/trebuchet-org/catapult/internal/domain"

// ShowCatalog exposes the product catalogs and, for one product, the
// global dependency order
type ShowCatalog struct {
	catalogs CatalogLoader
}

// NewShowCatalog creates a new ShowCatalog use case
func NewShowCatalog(catalogs CatalogLoader) *ShowCatalog {
	return &ShowCatalog{catalogs: catalogs}
}

// ShowCatalogResult is a catalog and its components in deployment order
type ShowCatalogResult struct {
	Catalog *domain.Catalog
	Order   []string
}

// Products lists the known products
func (u *ShowCatalog) Products() []string {
	return u.catalogs.Products()
}

// Run loads a product catalog and orders every component it declares
func (u *ShowCatalog) Run(product string) (*ShowCatalogResult, error) {
	catalog, err := u.catalogs.Load(product)
	if err != nil {
		return nil, err
	}

	specs := make([]domain.ComponentSpec, len(catalog.Components))
	for i, c := range catalog.Components {
		spec := domain.ComponentSpec{Name: c.Name, Index: i, DependsOn: c.DependsOn}
		for _, arg := range c.Args {
			switch {
			case arg.Ref != "":
				spec.ConstructorArgs = append(spec.ConstructorArgs, domain.ComponentRef(arg.Type, arg.Ref))
			case len(arg.Refs) > 0:
				spec.ConstructorArgs = append(spec.ConstructorArgs, domain.RefList(arg.Type, arg.Refs, arg.Optional))
			}
		}
		specs[i] = spec
	}

	order, err := NewDependencyGraph(specs).TopologicalSort()
	if err != nil {
		return nil, err
	}
	return &ShowCatalogResult{Catalog: catalog, Order: order}, nil
}
