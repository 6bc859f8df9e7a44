package domain

type Product struct {
	ID            string
	Name          string
	Price         Money
	Compatibility string
	Image         string
	InStock       bool
	Category      string
}
