package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysUser{},
	&SysOprLog{},
	&MenuItem{},
	// Catalog
	&Category{},
	&Product{},
	&Ingredient{},
	&Extra{},
	&ProductIngredient{},
	&ProductExtra{},
	&UserFavorite{},
	// Analytics
	&ProductView{},
	&ProductPopularity{},
}
