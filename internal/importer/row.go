package importer

// Row is one raw spreadsheet record keyed by column label. Values are primitives
// as produced by the spreadsheet codec or the JSON decoder: string, number,
// bool, time.Time or nil.
type Row map[string]any

// Column labels of the product import schema.
const (
	ColName               = "Nom"
	ColCategory           = "Catégorie"
	ColUnitPrice          = "Prix détail"
	ColUnit               = "Unité"
	ColBarcode            = "Code barre"
	ColDescription        = "Description"
	ColPurchasePrice      = "Prix achat"
	ColHalfWholesalePrice = "Prix demi-gros"
	ColWholesalePrice     = "Prix gros"
	ColStockMin           = "Stock min"
	ColQuantity           = "Quantité"
	ColActive             = "Actif"
	ColExpirationDate     = "Date expiration"
)

// Column describes one column of the import template.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, integer, boolean, date
	Example     string `json:"example"`
}

// Columns returns the product import columns in template order.
func Columns() []Column {
	return []Column{
		{Name: ColName, Description: "Nom du produit", Required: true, Type: "string", Example: "Riz parfumé 5kg"},
		{Name: ColCategory, Description: "Catégorie, créée si elle n'existe pas", Required: true, Type: "string", Example: "Céréales"},
		{Name: ColUnitPrice, Description: "Prix de vente au détail", Required: true, Type: "number", Example: "1000"},
		{Name: ColUnit, Description: "Unité de vente", Required: true, Type: "string", Example: "kg"},
		{Name: ColBarcode, Description: "Code barre, unique par entreprise", Type: "string", Example: "3017620422003"},
		{Name: ColDescription, Description: "Description libre", Type: "string"},
		{Name: ColPurchasePrice, Description: "Prix d'achat", Type: "number", Example: "800"},
		{Name: ColHalfWholesalePrice, Description: "Prix demi-gros", Type: "number", Example: "950"},
		{Name: ColWholesalePrice, Description: "Prix gros", Type: "number", Example: "900"},
		{Name: ColStockMin, Description: "Stock minimum (défaut 0)", Type: "integer", Example: "5"},
		{Name: ColQuantity, Description: "Quantité en stock (défaut 0)", Type: "integer", Example: "20"},
		{Name: ColActive, Description: "false pour désactiver, actif par défaut", Type: "boolean", Example: "true"},
		{Name: ColExpirationDate, Description: "Date d'expiration (AAAA-MM-JJ)", Type: "date", Example: "2026-12-31"},
	}
}
