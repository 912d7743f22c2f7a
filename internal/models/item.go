package models

// CatalogItem represents one inventory item as returned by the Orchestra ERP
// items endpoint. It is an immutable snapshot: the sync pipeline never writes
// back to it.
type CatalogItem struct {
	ID             int64   `json:"id"`
	ItemNumber     string  `json:"itemNumber"`
	ItemType       string  `json:"itemType,omitempty"`
	Description    string  `json:"description"`
	DescriptionEN  string  `json:"descriptionEN,omitempty"`
	Description2   string  `json:"description2,omitempty"`
	Description2EN string  `json:"description2EN,omitempty"`
	Category       string  `json:"category,omitempty"`
	SubCategory    string  `json:"subCategory,omitempty"`
	Active         bool    `json:"active"`
	Photo          string  `json:"photo,omitempty"`
	PDF            string  `json:"pdf,omitempty"`
	Stock          int     `json:"stock"`
	Retail         float64 `json:"retail"`
	RetailUS       float64 `json:"retailUS"`
	Weight         float64 `json:"weight"`
	UnitOfMeasure  string  `json:"unitOfMeasure,omitempty"`
	Discontinued   bool    `json:"discontinued"`
}

// TokenResponse is the OAuth2 client-credentials token response from the
// Orchestra identity endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
