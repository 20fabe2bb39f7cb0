package models

// Product is a single catalog item. ProductID and Category together form the
// table's composite primary key; ProductID is generated server-side at
// creation time and never changes afterwards.
type Product struct {
	ProductID   string  `json:"productID" gorm:"primaryKey;type:varchar(36)" bson:"productID"`
	Category    string  `json:"category" gorm:"primaryKey;type:varchar(64)" bson:"category"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price"`
	IsActive    bool    `json:"isActive" bson:"isActive"`
}

// ProductPayload is the client-supplied body for create and update requests.
// Fields are pointers so the validator can tell a missing field from a zero
// value (price 0 and isActive false are both legal inputs).
type ProductPayload struct {
	Name        *string  `json:"name" validate:"required"`
	Category    *string  `json:"category" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	IsActive    *bool    `json:"isActive" validate:"required"`
}
