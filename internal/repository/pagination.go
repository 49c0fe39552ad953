package repository

// Page holds normalized pagination input.
type Page struct {
	Page  int
	Limit int
}

// normalize applies defaults: page 1, limit 50, capped at 100.
func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 50
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}
