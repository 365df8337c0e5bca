package models

// ProductType describes a kind of stock item
type ProductType struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	UnitOfMeasure string `json:"unitOfMeasure"`
	Description   string `json:"description,omitempty"`
}

// ProductTypeRequest is the body for creating or updating a product type
type ProductTypeRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	UnitOfMeasure string `json:"unitOfMeasure"`
	Description   string `json:"description,omitempty"`
}

func FindProductType(productTypes []ProductType, id int64) (*ProductType, bool) {
	for i := range productTypes {
		if productTypes[i].ID == id {
			return &productTypes[i], true
		}
	}
	return nil, false
}
