package auth

import (
	"butce-backend/internal/fold"
	"butce-backend/internal/models"
)

var knownRoles = map[string]models.UserRole{
	string(models.RoleOperationsManager): models.RoleOperationsManager,
	string(models.RoleGeneralManager):    models.RoleGeneralManager,
}

// ParseRole maps any accepted spelling ("Genel Müdür", "operasyon_müdürü",
// "GENEL_MUDUR") to its canonical role. Unknown roles are rejected.
func ParseRole(raw string) (models.UserRole, bool) {
	role, ok := knownRoles[fold.Key(raw)]
	return role, ok
}
