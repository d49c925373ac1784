package dto

type SetRoleRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	Role             string `json:"role"`
	CanEdit          bool   `json:"canEdit"`
	CanSave          bool   `json:"canSave"`
	CanReset         bool   `json:"canReset"`
	CanAddCatalog    bool   `json:"canAddCatalog"`
	CanDeleteCatalog bool   `json:"canDeleteCatalog"`
}
