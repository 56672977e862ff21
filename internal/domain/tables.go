package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	// Content
	&Service{},
	&Blog{},
	&News{},
	&Testimonial{},
	// Catalog
	&Product{},
	&ProductImage{},
}
