package catalog

import (
	"encoding/json"
	"strings"
)

// Static payloads served while the backend is unreachable. Collections that
// only the backend can know about (orders, clients, notifications) are empty.
var (
	fallbackCategories = json.RawMessage(`[
		{"id":"camisetas","name":"Camisetas"},
		{"id":"calcas","name":"Calças"},
		{"id":"acessorios","name":"Acessórios"}
	]`)
	fallbackCoupons       = json.RawMessage(`[]`)
	fallbackOrders        = json.RawMessage(`[]`)
	fallbackClients       = json.RawMessage(`[]`)
	fallbackNotifications = json.RawMessage(`[]`)
	fallbackAppearance    = json.RawMessage(`{
		"storeName":"Storefront",
		"primaryColor":"#111827",
		"secondaryColor":"#f59e0b",
		"logoUrl":"",
		"bannerUrl":""
	}`)
)

func fallbackProducts() []Product {
	original := 129.9
	stock := 12
	return []Product{
		{
			ID:            "1",
			Name:          "Camiseta Básica",
			Price:         79.9,
			OriginalPrice: &original,
			Image:         "/images/products/camiseta-basica.jpg",
			Category:      "camisetas",
			Sizes:         []string{"P", "M", "G", "GG"},
			Colors:        []string{"Preto", "Branco"},
			Stock:         &stock,
			IsNew:         true,
		},
		{
			ID:       "2",
			Name:     "Calça Jeans Slim",
			Price:    189.9,
			Image:    "/images/products/calca-jeans-slim.jpg",
			Category: "calcas",
			Sizes:    []string{"38", "40", "42", "44"},
			Colors:   []string{"Azul"},
		},
		{
			ID:       "3",
			Name:     "Boné Aba Curva",
			Price:    59.9,
			Image:    "/images/products/bone-aba-curva.jpg",
			Category: "acessorios",
			Colors:   []string{"Preto", "Verde"},
		},
	}
}

func findFallbackProduct(id string) (Product, bool) {
	for _, p := range fallbackProducts() {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// filterProducts applies the listing filters the backend would apply.
func filterProducts(products []Product, query ProductQuery) []Product {
	category := strings.ToLower(strings.TrimSpace(query.Category))
	search := strings.ToLower(strings.TrimSpace(query.Search))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
