package models

type MenuItem struct {
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
}

// DefaultMenu is the counter's stock menu, used when no menu file is configured.
var DefaultMenu = []MenuItem{
	{Name: "Cappuccino", Price: 5},
	{Name: "Latte", Price: 5},
	{Name: "Espresso", Price: 4},
	{Name: "Hot Chocolate", Price: 4},
	{Name: "Muffin", Price: 6},
	{Name: "Flat White", Price: 4},
	{Name: "Mocha", Price: 5},
	{Name: "Long Black", Price: 4},
	{Name: "Tea", Price: 3},
	{Name: "Iced Coffee", Price: 6},
	{Name: "Bagel", Price: 5},
	{Name: "Brownie", Price: 4},
	{Name: "Scone", Price: 3},
	{Name: "Sandwich", Price: 7},
	{Name: "Juice", Price: 4},
}
