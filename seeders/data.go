package seeders

var branchesData = []struct {
	Name        string
	ShortName   string
	IsProtected bool
}{
	{Name: "Головной сервисный центр", ShortName: "ГСЦ", IsProtected: true},
	{Name: "Сервисный центр Худжанд", ShortName: "СЦХ", IsProtected: false},
}

var rolesData = []struct {
	Name              string
	CanManageWorkflow bool
}{
	{Name: "Super Admin", CanManageWorkflow: true},
	{Name: "Руководитель филиала", CanManageWorkflow: true},
	{Name: "Приёмщик", CanManageWorkflow: false},
	{Name: "Мастер", CanManageWorkflow: false},
	{Name: "Кассир", CanManageWorkflow: false},
	{Name: "Курьер", CanManageWorkflow: false},
}

// Стартовая цепочка статусов ремонта для защищённого филиала.
// Порядок элементов - это и есть sort.
var workflowStatusesData = []struct {
	NameUz string
	NameRu string
	NameEn string
}{
	{NameUz: "Yangi", NameRu: "Новая", NameEn: "New"},
	{NameUz: "Diagnostika", NameRu: "Диагностика", NameEn: "Diagnostics"},
	{NameUz: "Ta'mirlashda", NameRu: "В ремонте", NameEn: "In repair"},
	{NameUz: "Tayyor", NameRu: "Готово", NameEn: "Ready"},
	{NameUz: "Berildi", NameRu: "Выдано", NameEn: "Delivered"},
	{NameUz: "Bekor qilindi", NameRu: "Отменено", NameEn: "Cancelled"},
}
