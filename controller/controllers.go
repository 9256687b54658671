// controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/mintgate/service"

type Controllers struct {
	Whitelist *WhitelistController
	Hook      *HookController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Whitelist: NewWhitelistController(services.Whitelist),
		Hook:      NewHookController(services.Whitelist),
	}
}
