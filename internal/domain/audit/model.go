package audit

import "time"

// Acciones registradas. El feed de actividad del dashboard filtra por
// ActionFeedingLogged; el resto solo aparece en /admin/audit.
const (
	ActionSignup           = "signup"
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionChangePassword   = "change_password"
	ActionResetPassword    = "admin_reset_password"
	ActionUserStatus       = "user_status"
	ActionUserEmail        = "user_email"
	ActionFeedingLogged    = "feeding_logged"
	ActionLowStock         = "low_stock"
	ActionWeightLogged     = "weight_logged"
	ActionDeletePet        = "admin_delete_pet"
	ActionUpdatePetLimits  = "admin_update_pet_limits"
	ActionMaintenanceClear = "maintenance_clear"
	ActionMaintenanceSeed  = "maintenance_seed"
)

// Entry es append-only: no hay update ni delete.
type Entry struct {
	ID          string
	CreatedAt   time.Time
	Action      string
	Details     string
	ActorUserID string
}
