package audit

import "github.com/sirupsen/logrus"

// Well-known audit actions. The list is a catalogue, not an enum: any string
// is a valid action.
const (
	ActionAPIRequest = "api.request"

	ActionProductView   = "product.view"
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"

	ActionOrderCreate = "order.create"
	ActionOrderView   = "order.view"
	ActionOrderUpdate = "order.update"
	ActionOrderCancel = "order.cancel"

	ActionUserLogin       = "user.login"
	ActionUserLogout      = "user.logout"
	ActionUserLoginFailed = "user.login.failed"

	ActionSystemAccess = "system.access"
	ActionConfigChange = "system.config.change"
)

// Record builds a one-off event and emits it immediately. Handlers use it to
// record domain actions alongside the per-request event from the middleware.
func Record(logger *logrus.Logger, action, resource string, opts ...Option) {
	NewEvent(action, resource, opts...).Emit(logger)
}
